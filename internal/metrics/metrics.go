// package metrics exposes Prometheus counters for the web front end.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/desertthunder/playrec/internal/viewstate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "playrec"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	submissions prometheus.Counter
	fetches     *prometheus.CounterVec
	feedback    *prometheus.CounterVec
	requests    *prometheus.CounterVec
	visitors    prometheus.Gauge
}

// New creates the collectors and registers them.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Count of submitted queries.",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendation_fetches_total",
			Help:      "Count of recommendation proxy calls by result.",
		}, []string{"result"}),
		feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_total",
			Help:      "Count of feedback clicks by choice.",
		}, []string{"choice"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		visitors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visitors",
			Help:      "Number of visitors holding a controller.",
		}),
	}

	m.registry.MustRegister(m.submissions, m.fetches, m.feedback, m.requests, m.visitors)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordSubmit() {
	if m == nil {
		return
	}
	m.submissions.Inc()
}

func (m *Metrics) RecordFeedback(choice viewstate.FeedbackChoice) {
	if m == nil {
		return
	}
	m.feedback.WithLabelValues(choice.String()).Inc()
}

// RecordRequest satisfies server.RequestRecorder.
func (m *Metrics) RecordRequest(method string, code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (m *Metrics) SetVisitors(n int) {
	if m == nil {
		return
	}
	m.visitors.Set(float64(n))
}

// InstrumentFetcher counts every call made through f as "ok" or "error".
func (m *Metrics) InstrumentFetcher(f viewstate.Fetcher) viewstate.Fetcher {
	if m == nil || f == nil {
		return f
	}
	return viewstate.FetcherFunc(func(ctx context.Context, query string) (any, error) {
		payload, err := f.Fetch(ctx, query)
		result := "ok"
		if err != nil {
			result = "error"
		}
		m.fetches.WithLabelValues(result).Inc()
		return payload, err
	})
}
