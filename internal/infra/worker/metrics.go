package worker

import (
	"engjobs/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the ingestion worker.
// It embeds the standard ConfigMetrics for configuration monitoring and adds
// worker-specific metrics for cron job execution tracking.
//
// Embedded metrics (from ConfigMetrics):
//   - worker_config_load_timestamp
//   - worker_config_validation_errors_total
//   - worker_config_fallbacks_total
//   - worker_config_fallback_active
//
// Worker-specific metrics:
//   - worker_cron_job_runs_total: runs by status (success/failure)
//   - worker_cron_job_duration_seconds: run duration histogram
//   - worker_cron_job_sources_processed_total: sources ingested across runs
//   - worker_cron_job_postings_stored_total: postings stored across runs
//   - worker_cron_job_last_success_timestamp: last successful run
type WorkerMetrics struct {
	*config.ConfigMetrics

	// CronJobRunsTotal counts cron job runs by status (success, failure).
	CronJobRunsTotal *prometheus.CounterVec

	// CronJobDurationSeconds measures the duration of each run.
	CronJobDurationSeconds prometheus.Histogram

	// CronJobSourcesProcessedTotal counts sources ingested per run.
	CronJobSourcesProcessedTotal prometheus.Counter

	// CronJobPostingsStoredTotal counts newly stored postings per run.
	CronJobPostingsStoredTotal prometheus.Counter

	// CronJobLastSuccessTimestamp records the last successful run.
	CronJobLastSuccessTimestamp prometheus.Gauge
}

// NewWorkerMetrics creates a WorkerMetrics instance. Metrics are registered
// automatically via promauto.
func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800}, // 1s to 30m
		}),

		CronJobSourcesProcessedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_sources_processed_total",
			Help: "Total number of sources ingested across all cron job runs",
		}),

		CronJobPostingsStoredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_postings_stored_total",
			Help: "Total number of postings stored across all cron job runs",
		}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful cron job run",
		}),
	}
}

// MustRegister is a no-op kept for the conventional initialization pattern;
// metrics are auto-registered via promauto in NewWorkerMetrics.
func (m *WorkerMetrics) MustRegister() {
	// No-op: metrics are auto-registered via promauto
}

// RecordJobRun increments the job run counter for the given status
// ("success" or "failure").
func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

// RecordJobDuration observes the duration of a cron job run in seconds.
func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

// RecordSourcesProcessed adds the number of sources ingested in a run.
func (m *WorkerMetrics) RecordSourcesProcessed(count int) {
	m.CronJobSourcesProcessedTotal.Add(float64(count))
}

// RecordPostingsStored adds the number of postings stored in a run.
func (m *WorkerMetrics) RecordPostingsStored(count int) {
	m.CronJobPostingsStoredTotal.Add(float64(count))
}

// RecordLastSuccess records the current time as the last successful run.
func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}
