package http

import (
	"net/http"
	"strconv"
	"time"

	"engjobs/internal/handler/http/pathutil"
	"engjobs/internal/handler/http/responsewriter"
	"engjobs/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsMiddleware records HTTP request metrics including duration and status codes.
// It uses path normalization to prevent label cardinality explosion from ID-containing
// paths. The counters and histograms live in the central metrics registry so the
// admin API shares one set of metric families with the rest of the system.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Example: /postings/123 -> /postings/:id
		normalizedPath := pathutil.NormalizePath(r.URL.Path)

		wrapped := responsewriter.Wrap(w)

		start := time.Now()
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start)

		status := strconv.Itoa(wrapped.StatusCode())
		metrics.RecordHTTPRequest(r.Method, normalizedPath, status, duration)
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
