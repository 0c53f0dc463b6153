// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track admin API request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Business metrics track the ingestion and publishing pipeline
var (
	// PostingsTotal tracks the total number of postings in the database
	PostingsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "postings_total",
			Help: "Total number of postings in the database",
		},
	)

	// SourcesTotal tracks the number of active sources in the catalog
	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Number of active sources in the catalog",
		},
	)

	// PostingsFetchedTotal counts raw records fetched from each source
	PostingsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postings_fetched_total",
			Help: "Total number of raw records fetched from sources",
		},
		[]string{"source"},
	)

	// SourceIngestDuration measures time to fetch and normalize one source
	SourceIngestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_ingest_duration_seconds",
			Help:    "Time taken to fetch and normalize a source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source"},
	)

	// SourceIngestErrors counts per-source failures during an ingest run
	SourceIngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_ingest_errors_total",
			Help: "Total number of source ingest errors",
		},
		[]string{"source", "error_type"},
	)

	// IngestRunDuration measures the duration of a full ingest run
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Time taken for a full ingest run across all sources",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// IngestRunPostings tracks the output size of the latest ingest run
	IngestRunPostings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_run_postings",
			Help: "Number of postings produced by the latest ingest run",
		},
	)

	// PostingsPublishedTotal counts postings pushed through the publish stage
	PostingsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "postings_published_total",
			Help: "Total number of postings published",
		},
		[]string{"status"}, // status: inserted, duplicate, failed
	)
)

// Database metrics track database performance
var (
	// DBQueryDuration measures database query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
