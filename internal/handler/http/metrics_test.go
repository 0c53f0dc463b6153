package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"engjobs/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware_RecordsRequests(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()
	metrics.HTTPRequestDuration.Reset()

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/postings", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/postings", "200"))
	if count != 1 {
		t.Errorf("expected 1 recorded request, got %f", count)
	}
}

func TestMetricsMiddleware_RecordsStatusCode(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/postings", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/postings", "404"))
	if count != 1 {
		t.Errorf("expected 1 recorded 404, got %f", count)
	}
}

func TestMetricsMiddleware_NormalizesPath(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Different IDs must collapse into one label value
	for _, path := range []string{"/postings/1", "/postings/42", "/postings/999"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/postings/:id", "200"))
	if count != 3 {
		t.Errorf("expected 3 requests under /postings/:id, got %f", count)
	}
}

func TestMetricsMiddleware_ImplicitStatus(t *testing.T) {
	metrics.HTTPRequestsTotal.Reset()

	// Handler writes the body without calling WriteHeader
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	count := testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("GET", "/health", "200"))
	if count != 1 {
		t.Errorf("expected implicit 200 to be recorded, got %f", count)
	}
}

func TestMetricsHandler_ServesPrometheusFormat(t *testing.T) {
	handler := MetricsHandler()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body := rr.Body.String(); !strings.Contains(body, "go_goroutines") {
		t.Error("expected Prometheus exposition format with runtime metrics")
	}
}
