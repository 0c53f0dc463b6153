// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes all application metrics including:
//   - HTTP request metrics for the admin API
//   - Pipeline metrics (source ingests, postings, publishes, notifications)
//   - Database query metrics
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint.
//
// Example usage:
//
//	import "engjobs/internal/observability/metrics"
//
//	func ingestSource(key string) {
//	    start := time.Now()
//	    // ... fetch and normalize ...
//	    metrics.RecordSourceIngest(key, time.Since(start), found)
//	}
package metrics
