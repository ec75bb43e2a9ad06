package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Search outcomes recorded by SearchQueriesTotal.
const (
	outcomeHit     = "hit"
	outcomeNoMatch = "no_match"
	outcomeError   = "error"
)

// Metrics holds the Prometheus collectors for the HTTP API.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchResultsCount  prometheus.Histogram
	DocumentsIndexed    prometheus.Counter
	CorpusPassages      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them on a fresh registry,
// so several servers can live in one process.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiji_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kiji_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kiji_search_queries_total",
				Help: "Total search queries by outcome (hit, no_match, error).",
			},
			[]string{"outcome"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kiji_search_results_count",
				Help:    "Number of matching passages per search query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		DocumentsIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kiji_documents_indexed_total",
				Help: "Total documents indexed through the API.",
			},
		),
		CorpusPassages: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kiji_corpus_passages",
				Help: "Number of passages in the loaded corpus.",
			},
		),
	}
	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchQueriesTotal,
		m.SearchResultsCount,
		m.DocumentsIndexed,
		m.CorpusPassages,
	)
	return m
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := routePattern(r)
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) observeSearch(total int, err error) {
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues(outcomeError).Inc()
	case total == 0:
		m.SearchQueriesTotal.WithLabelValues(outcomeNoMatch).Inc()
		m.SearchResultsCount.Observe(0)
	default:
		m.SearchQueriesTotal.WithLabelValues(outcomeHit).Inc()
		m.SearchResultsCount.Observe(float64(total))
	}
}

// routePattern keeps label cardinality bounded: "/api/v1/documents/{id}" rather than each ID.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}
