// package server contains routing, middleware & OAuth callback handlers shared by the web app and the CLI
package server

import (
	"net/http"
)

// Middleware decorates a handler. The router applies them in registration order, outermost first.
type Middleware func(http.Handler) http.Handler

// Handler is a self-routing handler: it serves every pattern returned by Routes for all methods.
//
// The OAuth callback handlers implement it so the CLI can mount one on a bare router.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router is what the web app and the CLI callback server register against.
type Router interface {
	http.Handler
	Use(middleware ...Middleware)
	Handle(method, path string, handler http.Handler)
	HandleFunc(method, path string, fn http.HandlerFunc)
	Handler(handler Handler)
}

var _ Router = (*BasicRouter)(nil)
