// Package observability provides production-grade observability infrastructure
// including structured logging and Prometheus metrics.
//
// This package centralizes observability concerns to enable:
//   - Structured logging with context propagation
//   - Prometheus metrics for monitoring
//   - Performance profiling and debugging
//
// Subpackages:
//   - logging: Structured logging utilities with slog
//   - metrics: Prometheus metrics registry and recorders
//
// Example usage:
//
//	import (
//	    "engjobs/internal/observability/logging"
//	    "engjobs/internal/observability/metrics"
//	)
//
//	func main() {
//	    logger := logging.NewLogger()
//	    logger.Info("application started")
//
//	    metrics.RecordSourceIngest("example-source", time.Second, 10)
//	}
package observability
