// Package viewstate owns the interaction state of the recommender page and the transitions that mutate it.
//
// # State
//
// A [Controller] holds four pieces of state:
//
//   - the query text, replaced on every keystroke by [Controller.UpdateQueryText]
//   - the session status, read through an injected [Session] and never written here
//   - the submission [Phase], which moves from [Idle] to [Submitted] and never back
//   - the result set, replaced wholesale on every submit
//
// # Submitting
//
// [Controller.Submit] issues exactly one call to the [Fetcher] with the current query and waits for it.
// Whatever comes back, including an error, the result set is then overwritten with [FallbackResults] and the
// phase becomes [Submitted]. Fetch failures are logged and never returned.
//
// The fetched payload is parsed but not rendered unless the controller is built with [Options.UseFetched],
// in which case a payload of the form {"playlists": [{"name": ..., "tracks": [...]}]} replaces the fallback.
//
// No guard exists against overlapping submits: each one writes when its own fetch resolves, so the last to
// resolve wins. The internal mutex is held only while state is read or written, never across the fetch.
//
// # Rendering
//
// [Controller.CurrentView] is a pure projection to a [View]. Renderers (internal/web, internal/ui,
// internal/formatter) draw from it and never read controller fields directly. The results section is nil
// while the phase is [Idle].
//
// # Feedback
//
// The Excellent/Mediocre/Terrible controls are routed to a [FeedbackSink]. The default sink does nothing.
package viewstate
