// Package metrics exposes Prometheus collectors for both services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cesargomez89/shamzam/internal/domain"
)

const namespace = "shamzam"

// Metrics holds one registry per process. All methods are safe on a nil
// receiver so callers that don't care can pass nil.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	catalogOperationsTotal *prometheus.CounterVec
	identifyOutcomesTotal  *prometheus.CounterVec
	recognitionDuration    *prometheus.HistogramVec
}

// New creates a registry with the process and Go runtime collectors plus the
// application metrics.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)
	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken for HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.catalogOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_operations_total",
			Help:      "Catalog operations by result kind",
		},
		[]string{"operation", "result"},
	)
	m.identifyOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "identify_outcomes_total",
			Help:      "Identification requests by outcome",
		},
		[]string{"outcome"},
	)
	m.recognitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recognition_duration_seconds",
			Help:      "Round trip time to the recognition provider",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.catalogOperationsTotal,
		m.identifyOutcomesTotal,
		m.recognitionDuration,
	)
	return m
}

// Registry returns the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCatalogOp counts a catalog operation, labelled by the error kind
// ("ok" on success).
func (m *Metrics) ObserveCatalogOp(operation string, err error) {
	if m == nil {
		return
	}
	m.catalogOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

// ObserveIdentify counts one identification outcome.
func (m *Metrics) ObserveIdentify(outcome string) {
	if m == nil {
		return
	}
	m.identifyOutcomesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecognition records how long the provider took.
func (m *Metrics) ObserveRecognition(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.recognitionDuration.WithLabelValues(resultLabel(err)).Observe(d.Seconds())
}

// unmatchedRoute labels requests no route matched, keeping 404 scans to one series.
const unmatchedRoute = "unmatched"

// Middleware records request counts and latency keyed by the chi route
// pattern, so path parameters don't explode label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := unmatchedRoute
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return domain.KindOf(err).String()
}
