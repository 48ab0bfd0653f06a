// Package web serves the recommender page over HTTP.
//
// # Architecture
//
// Every visitor is identified by the [VisitorCookie] (a uuid set on first request) and gets its own
// viewstate.Controller held in memory by the [App]. Handlers translate browser events into controller calls
// and render [viewstate.View] with html/template:
//
//	GET  /          → page for the visitor's current view
//	POST /query     → UpdateQueryText on every keystroke (204)
//	POST /submit    → UpdateQueryText + Submit, then 303 back to / so the form never reloads into a resubmit
//	POST /feedback  → feedback stub (204)
//	GET  /signin    → Spotify consent redirect, or a local sign-in when no credentials are configured
//	GET  /callback  → OAuth completion, upserts the visitor's models.Session
//	POST /signout   → soft-deletes the visitor's sessions
//	GET  /api/view  → JSON projection of the current view
//	GET  /healthz   → liveness
//
// # Session State
//
// Query text and results never leave memory. Sign-in state is the only thing persisted: the callback stores
// the Spotify token in the sessions table through repositories.SessionRepository, and a visitor reads as
// signed in while an active row exists for its cookie.
//
// # Middleware
//
// [App.Handler] wraps every route with server.Recover, server.Logging and server.RateLimit.
package web
