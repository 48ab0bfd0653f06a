// Package server provides HTTP routing, middleware, and OAuth callback handling for the CLI and the web app.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
// Middleware must be registered with Use before the routes it should wrap.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with per-path method dispatch.
// Unregistered methods on a known path get 405 with an Allow header.
//
// # Middleware
//
//   - [Logging] writes one charmbracelet/log line per request
//   - [Recover] turns handler panics into 500s
//   - [RateLimit] applies a shared token bucket from golang.org/x/time/rate
//
// # OAuth Callback Handlers
//
// [OAuthHandler] serves the CLI's one-shot flow: `playrec auth login` starts a temporary server, the handler
// validates the state parameter, exchanges the code and delivers exactly one [OAuthResult] on its channel.
// It only processes one callback to prevent replay attacks.
//
// [CallbackHandler] serves the long-running web app. [BeginSignIn] stores a per-visitor state in a cookie
// before redirecting to the provider; the callback compares against it, exchanges the code and hands the token
// to a [TokenFunc] that records the visitor's session.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
