package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records operation outcomes and HTTP timings. It implements
// app.Metrics.
type Metrics struct {
	submissions     *prometheus.CounterVec
	edits           *prometheus.CounterVec
	deletions       *prometheus.CounterVec
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_submissions_total",
				Help: "Answer submissions by outcome",
			},
			[]string{"outcome"},
		),
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_quiz_edits_total",
				Help: "Quiz edits by outcome",
			},
			[]string{"outcome"},
		),
		deletions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizhub_deletions_total",
				Help: "Cascading deletions by entity kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
	}
	reg.MustRegister(m.submissions, m.edits, m.deletions, m.requestCounter, m.requestDuration)
	return m
}

func (m *Metrics) ObserveSubmission(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveEdit(outcome string) {
	m.edits.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDeletion(kind, outcome string) {
	m.deletions.WithLabelValues(kind, outcome).Inc()
}

// Middleware times requests, labelled by chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			endpoint = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}
