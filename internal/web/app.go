package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrec/internal/metrics"
	"github.com/desertthunder/playrec/internal/repositories"
	"github.com/desertthunder/playrec/internal/server"
	"github.com/desertthunder/playrec/internal/services"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/viewstate"
)

// VisitorCookie identifies a browser across requests.
const VisitorCookie = "playrec_visitor"

//go:embed templates/*.html
var templateFiles embed.FS

// Options configures an [App].
type Options struct {
	// Fetcher is called once per submit.
	Fetcher viewstate.Fetcher
	// OAuth drives Spotify sign-in. With a nil OAuth or Sessions, sign-in toggles an in-memory flag.
	OAuth    services.OAuthService
	Sessions *repositories.SessionRepository
	Feedback viewstate.FeedbackSink
	Logger   *log.Logger
	// Metrics, when set, is served on /metrics and counts submits, fetches, feedback and requests.
	Metrics *metrics.Metrics

	UseFetched bool
	RateLimit  float64
	Burst      int

	// VisitorTTL drops visitors idle for longer than this; zero means the cookie lifetime.
	VisitorTTL time.Duration
	// MaxVisitors caps the registry by evicting the least recently seen visitor; zero means 10000.
	MaxVisitors int
}

// App owns one controller per visitor and the routes that drive them.
type App struct {
	opts   Options
	logger *log.Logger
	page   *template.Template
	now    func() time.Time

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	id         string
	controller *viewstate.Controller
	// signedIn backs local sign-in when no OAuth service is configured.
	signedIn bool
	lastSeen time.Time
}

// New parses the page template and returns an [App].
func New(opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	if opts.VisitorTTL <= 0 {
		opts.VisitorTTL = visitorTTL
	}
	if opts.MaxVisitors <= 0 {
		opts.MaxVisitors = maxVisitors
	}
	opts.Fetcher = opts.Metrics.InstrumentFetcher(opts.Fetcher)

	page, err := template.ParseFS(templateFiles, "templates/page.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &App{
		opts:     opts,
		logger:   shared.WithLogger(opts.Logger, "component", "web"),
		page:     page,
		now:      time.Now,
		visitors: make(map[string]*visitor),
	}, nil
}

// Handler builds the router with middleware and every route registered.
func (a *App) Handler() http.Handler {
	r := server.NewBasicRouter()
	r.Use(
		server.Recover(a.logger),
		server.Logging(a.logger),
	)
	if a.opts.Metrics != nil {
		r.Use(server.Instrument(a.opts.Metrics))
	}
	r.Use(server.RateLimit(a.opts.RateLimit, a.opts.Burst))
	a.Register(r)
	return r
}

// Register adds the app's routes to r.
func (a *App) Register(r *server.BasicRouter) {
	r.HandleFunc(http.MethodGet, "/{$}", a.handleIndex)
	r.HandleFunc(http.MethodPost, "/query", a.handleQuery)
	r.HandleFunc(http.MethodPost, "/submit", a.handleSubmit)
	r.HandleFunc(http.MethodPost, "/feedback", a.handleFeedback)
	r.HandleFunc(http.MethodGet, "/signin", a.handleSignIn)
	r.HandleFunc(http.MethodPost, "/signout", a.handleSignOut)
	r.HandleFunc(http.MethodGet, "/api/view", a.handleView)
	r.HandleFunc(http.MethodGet, "/healthz", a.handleHealth)

	if a.opts.Metrics != nil {
		r.Handle(http.MethodGet, "/metrics", a.opts.Metrics.Handler())
	}

	if a.oauthEnabled() {
		r.Handle(http.MethodGet, "/callback", server.NewCallbackHandler(a.opts.OAuth, a.storeSession, "/", a.logger))
	}
}

// Visitors returns the number of visitors with a controller.
func (a *App) Visitors() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.visitors)
}

func (a *App) oauthEnabled() bool {
	return a.opts.OAuth != nil && a.opts.Sessions != nil
}

// visitor returns the caller's visitor, registering it so later requests reach the same controller.
func (a *App) visitor(w http.ResponseWriter, r *http.Request) *visitor {
	return a.lookup(w, r, true)
}

// peek is visitor for read-only routes: an unknown visitor gets a fresh controller that is not kept.
func (a *App) peek(w http.ResponseWriter, r *http.Request) *visitor {
	return a.lookup(w, r, false)
}

func (a *App) lookup(w http.ResponseWriter, r *http.Request, register bool) *visitor {
	id := ""
	if c, err := r.Cookie(VisitorCookie); err == nil {
		id = c.Value
	}
	if id == "" {
		id = shared.GenerateID()
		http.SetCookie(w, &http.Cookie{
			Name:     VisitorCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(visitorTTL.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if v, ok := a.visitors[id]; ok {
		v.lastSeen = now
		return v
	}

	v := &visitor{id: id, lastSeen: now}
	v.controller = viewstate.New(viewstate.Options{
		Fetcher:    a.opts.Fetcher,
		Session:    visitorSession{app: a, visitor: v},
		Feedback:   a.opts.Feedback,
		Logger:     shared.WithLogger(a.logger, "visitor", id),
		UseFetched: a.opts.UseFetched,
	})
	if !register {
		return v
	}

	a.evict(now)
	a.visitors[id] = v
	a.opts.Metrics.SetVisitors(len(a.visitors))
	return v
}

// evict drops visitors idle past the TTL and, when the registry is full, the least recently seen one.
// Callers hold a.mu.
func (a *App) evict(now time.Time) {
	oldest := ""
	for id, v := range a.visitors {
		if now.Sub(v.lastSeen) > a.opts.VisitorTTL {
			delete(a.visitors, id)
			continue
		}
		if oldest == "" || v.lastSeen.Before(a.visitors[oldest].lastSeen) {
			oldest = id
		}
	}

	if len(a.visitors) >= a.opts.MaxVisitors && oldest != "" {
		delete(a.visitors, oldest)
	}
}

// visitorSession reads a visitor's sign-in state from the session store.
type visitorSession struct {
	app     *App
	visitor *visitor
}

func (s visitorSession) Status() viewstate.SessionStatus {
	if !s.app.oauthEnabled() {
		s.app.mu.Lock()
		defer s.app.mu.Unlock()
		if s.visitor.signedIn {
			return viewstate.SignedIn
		}
		return viewstate.SignedOut
	}

	_, err := s.app.opts.Sessions.GetByVisitor(s.visitor.id)
	switch {
	case err == nil:
		return viewstate.SignedIn
	case errors.Is(err, shared.ErrSessionNotFound):
		return viewstate.SignedOut
	default:
		s.app.logger.Error("failed to read session", "visitor", s.visitor.id, "error", err)
		return viewstate.SignedOut
	}
}
