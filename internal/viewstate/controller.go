package viewstate

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playrec/internal/shared"
	"github.com/desertthunder/playrec/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Session reports the sign-in state owned by the authentication collaborator.
type Session interface {
	Status() SessionStatus
}

// SessionFunc adapts a function to [Session].
type SessionFunc func() SessionStatus

func (f SessionFunc) Status() SessionStatus { return f() }

// Fetcher issues the recommendation request for a query and returns the decoded body.
type Fetcher interface {
	Fetch(ctx context.Context, query string) (any, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, query string) (any, error)

func (f FetcherFunc) Fetch(ctx context.Context, query string) (any, error) { return f(ctx, query) }

// FeedbackSink receives rating clicks.
type FeedbackSink interface {
	SubmitFeedback(ctx context.Context, choice FeedbackChoice) error
}

// NopFeedback discards every choice.
type NopFeedback struct{}

func (NopFeedback) SubmitFeedback(context.Context, FeedbackChoice) error { return nil }

// Options configures a [Controller].
type Options struct {
	Fetcher    Fetcher
	Session    Session
	Feedback   FeedbackSink
	Logger     *log.Logger
	UseFetched bool
}

// Controller holds the page state for one visitor.
type Controller struct {
	mu      sync.Mutex
	query   string
	phase   Phase
	results []ResultItem

	fetcher    Fetcher
	session    Session
	feedback   FeedbackSink
	logger     *log.Logger
	useFetched bool
}

// New creates a [Controller] in the [Idle] phase with empty query text.
//
// A nil Session reads as [SignedOut]; a nil Feedback sink is replaced with [NopFeedback].
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Feedback == nil {
		opts.Feedback = NopFeedback{}
	}
	if opts.Session == nil {
		opts.Session = SessionFunc(func() SessionStatus { return SignedOut })
	}

	return &Controller{
		phase:      Idle,
		fetcher:    opts.Fetcher,
		session:    opts.Session,
		feedback:   opts.Feedback,
		logger:     opts.Logger,
		useFetched: opts.UseFetched,
	}
}

// UpdateQueryText replaces the query text. No validation is applied.
func (c *Controller) UpdateQueryText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = text
}

// Submit fetches recommendations for the current query, then installs the result set and moves to [Submitted].
//
// The fetch result only matters when the controller was built with UseFetched; otherwise the
// fallback sequence is installed unconditionally. Errors are logged and swallowed.
func (c *Controller) Submit(ctx context.Context) {
	ctx, span := telemetry.Tracer().Start(ctx, "viewstate.submit")
	defer span.End()

	c.mu.Lock()
	query := c.query
	c.mu.Unlock()

	span.SetAttributes(attribute.String("playrec.query", query))

	var (
		payload any
		err     error
	)
	if c.fetcher != nil {
		payload, err = c.fetcher.Fetch(ctx, query)
	} else {
		c.logger.Warn("no recommendation fetcher configured", "query", query)
	}

	results := FallbackResults()
	switch {
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.logger.Warn("recommendation fetch failed, showing fallback results", "query", query, "error", err)
	case c.useFetched:
		if fetched, ok := ResultsFromPayload(payload); ok {
			results = fetched
		} else {
			c.logger.Debug("payload had no playlists, showing fallback results", "query", query)
		}
	default:
		c.logger.Debug("discarding fetched payload", "query", query)
	}

	c.mu.Lock()
	c.results = results
	c.phase = Submitted
	c.mu.Unlock()

	span.SetAttributes(attribute.Int("playrec.results", len(results)))
}

// SubmitFeedback forwards choice to the configured [FeedbackSink].
func (c *Controller) SubmitFeedback(ctx context.Context, choice FeedbackChoice) error {
	c.logger.Debug("feedback received", "choice", choice)
	return c.feedback.SubmitFeedback(ctx, choice)
}

// Query returns the current query text.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Phase returns the current submission phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Results returns a copy of the result set, or nil while [Idle].
func (c *Controller) Results() []ResultItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Submitted {
		return nil
	}
	return cloneResults(c.results)
}
