package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/cesargomez89/shamzam/internal/domain"
)

func TestObserveCatalogOp(t *testing.T) {
	m := New()

	m.ObserveCatalogOp("create", nil)
	m.ObserveCatalogOp("create", domain.E(domain.KindConflict, "store.create_track", nil))
	m.ObserveCatalogOp("create", errors.New("disk on fire"))

	if got := testutil.ToFloat64(m.catalogOperationsTotal.WithLabelValues("create", "ok")); got != 1 {
		t.Errorf("Expected 1 ok create, got %v", got)
	}
	if got := testutil.ToFloat64(m.catalogOperationsTotal.WithLabelValues("create", "conflict")); got != 1 {
		t.Errorf("Expected 1 conflict create, got %v", got)
	}
	if got := testutil.ToFloat64(m.catalogOperationsTotal.WithLabelValues("create", "storage_fault")); got != 1 {
		t.Errorf("Expected 1 storage_fault create, got %v", got)
	}
}

func TestObserveIdentify(t *testing.T) {
	m := New()
	m.ObserveIdentify("stored")
	m.ObserveIdentify("stored")

	if got := testutil.ToFloat64(m.identifyOutcomesTotal.WithLabelValues("stored")); got != 2 {
		t.Errorf("Expected 2 stored outcomes, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCatalogOp("create", nil)
	m.ObserveIdentify("stored")
	m.ObserveRecognition(time.Second, nil)

	called := false
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true }))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Error("Expected nil middleware to pass through")
	}
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", m.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tracks", nil))

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/tracks", "418")); got != 1 {
		t.Errorf("Expected 1 request recorded, got %v", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /metrics, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "shamzam_http_requests_total") {
		t.Error("Expected exposition to contain shamzam_http_requests_total")
	}
}

func TestMiddlewareUnmatchedRoutesShareOneSeries(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/tracks", func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 50; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, fmt.Sprintf("/nope/%d", i), nil))
	}

	if got := testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 50 {
		t.Errorf("Expected 50 unmatched requests, got %v", got)
	}
	if got := testutil.CollectAndCount(m.httpRequestsTotal); got != 1 {
		t.Errorf("Expected a single series, got %d", got)
	}
}
