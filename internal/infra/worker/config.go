package worker

import (
	"fmt"
	"log/slog"
	"time"

	"engjobs/internal/parse/dateparse"
	"engjobs/internal/pkg/config"
	"engjobs/internal/usecase/ingest"
)

// WorkerConfig holds the configuration for the ingestion worker.
// It controls the cron schedule, timezone, run parameters, and the
// operational ports of the worker service.
//
// All fields have sensible defaults and validation rules so the worker can
// operate safely even with invalid or missing configuration (fail-open).
type WorkerConfig struct {
	// CronSchedule is the cron expression for the periodic ingest run.
	// Standard 5-field expressions and descriptors like "@hourly" are accepted.
	// Default: "@hourly"
	CronSchedule string

	// Timezone is the IANA timezone name for cron scheduling.
	// Default: "UTC"
	Timezone string

	// IngestDays is the recency window in days passed to each run.
	// Default: 14
	IngestDays int

	// MaxPostings caps a run's output, keeping the most recent postings.
	// Default: 300
	MaxPostings int

	// DateFallbackDays is the age assumed for unparseable date strings.
	// Default: 7
	DateFallbackDays int

	// SourcesPath optionally points at a YAML source registry file.
	// Empty means the embedded default registry.
	SourcesPath string

	// NotifyMaxConcurrent is the maximum number of concurrent notification
	// sends. Range: 1-50. Default: 10
	NotifyMaxConcurrent int

	// IngestTimeout is the maximum duration for a single ingest-and-publish
	// run. Default: 30 minutes
	IngestTimeout time.Duration

	// HealthPort is the port for the health check HTTP server.
	// Range: 1024-65535. Default: 9091
	HealthPort int
}

// DefaultConfig returns a WorkerConfig with production defaults: hourly
// ingest runs in UTC, a 14-day recency window capped at 300 postings, and
// the standard health port.
func DefaultConfig() WorkerConfig {
	return WorkerConfig{
		CronSchedule:        "@hourly",
		Timezone:            "UTC",
		IngestDays:          ingest.DefaultWindowDays,
		MaxPostings:         ingest.DefaultMaxPostings,
		DateFallbackDays:    dateparse.DefaultFallbackDays,
		SourcesPath:         "",
		NotifyMaxConcurrent: 10,
		IngestTimeout:       30 * time.Minute,
		HealthPort:          9091,
	}
}

// Validate checks the configuration values. If multiple fields are invalid,
// all errors are collected and returned together.
func (c *WorkerConfig) Validate() error {
	var errors []error

	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errors = append(errors, fmt.Errorf("cron schedule: %w", err))
	}

	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errors = append(errors, fmt.Errorf("timezone: %w", err))
	}

	if err := config.ValidateIntRange(c.IngestDays, 1, 365); err != nil {
		errors = append(errors, fmt.Errorf("ingest days: %w", err))
	}

	if err := config.ValidateIntRange(c.MaxPostings, 1, 10000); err != nil {
		errors = append(errors, fmt.Errorf("max postings: %w", err))
	}

	if err := config.ValidateIntRange(c.DateFallbackDays, 1, 90); err != nil {
		errors = append(errors, fmt.Errorf("date fallback days: %w", err))
	}

	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errors = append(errors, fmt.Errorf("notify max concurrent: %w", err))
	}

	if err := config.ValidatePositiveDuration(c.IngestTimeout); err != nil {
		errors = append(errors, fmt.Errorf("ingest timeout: %w", err))
	}

	if err := config.ValidateIntRange(c.HealthPort, 1024, 65535); err != nil {
		errors = append(errors, fmt.Errorf("health port: %w", err))
	}

	if len(errors) > 0 {
		return fmt.Errorf("validation failed: %v", errors)
	}

	return nil
}

// LoadConfigFromEnv loads worker configuration from environment variables
// with validation and automatic fallback to default values on failure.
//
// This function implements the fail-open strategy: it never returns an
// error, always producing a valid configuration. Validation failures use
// the default value, log a warning, and increment the fallback metrics.
//
// Environment variables:
//   - CRON_SCHEDULE: cron expression or descriptor (default: "@hourly")
//   - WORKER_TIMEZONE: IANA timezone name (default: "UTC")
//   - INGEST_DAYS: recency window in days, 1-365 (default: 14)
//   - INGEST_MAX_POSTINGS: run output cap, 1-10000 (default: 300)
//   - DATE_FALLBACK_DAYS: unparseable-date age, 1-90 (default: 7)
//   - SOURCES_PATH: YAML source registry path (default: embedded registry)
//   - NOTIFY_MAX_CONCURRENT: 1-50 (default: 10)
//   - INGEST_TIMEOUT: duration string, 1m-4h (default: 30m)
//   - WORKER_HEALTH_PORT: 1024-65535 (default: 9091)
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) (*WorkerConfig, error) {
	cfg := DefaultConfig()
	fallbackApplied := false

	loadString := func(envKey, field string, target *string, validator func(string) error) {
		result := config.LoadEnvWithFallback(envKey, *target, validator)
		*target = result.Value.(string)
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
	}

	loadInt := func(envKey, field string, target *int, min, max int) {
		result := config.LoadEnvInt(envKey, *target, func(v int) error {
			return config.ValidateIntRange(v, min, max)
		})
		*target = result.Value.(int)
		if result.FallbackApplied {
			fallbackApplied = true
			metrics.RecordValidationError(field)
			metrics.RecordFallback(field, "default")
			for _, warning := range result.Warnings {
				logger.Warn("Configuration fallback applied",
					slog.String("field", field),
					slog.String("warning", warning))
			}
		}
	}

	loadString("CRON_SCHEDULE", "cron_schedule", &cfg.CronSchedule, config.ValidateCronSchedule)
	loadString("WORKER_TIMEZONE", "timezone", &cfg.Timezone, config.ValidateTimezone)
	loadInt("INGEST_DAYS", "ingest_days", &cfg.IngestDays, 1, 365)
	loadInt("INGEST_MAX_POSTINGS", "max_postings", &cfg.MaxPostings, 1, 10000)
	loadInt("DATE_FALLBACK_DAYS", "date_fallback_days", &cfg.DateFallbackDays, 1, 90)
	loadInt("NOTIFY_MAX_CONCURRENT", "notify_max_concurrent", &cfg.NotifyMaxConcurrent, 1, 50)
	loadInt("WORKER_HEALTH_PORT", "health_port", &cfg.HealthPort, 1024, 65535)

	// SourcesPath is a plain string; any value is acceptable and the
	// registry loader reports unreadable files itself.
	cfg.SourcesPath = config.LoadEnvString("SOURCES_PATH", cfg.SourcesPath)

	result := config.LoadEnvDuration("INGEST_TIMEOUT", cfg.IngestTimeout, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	})
	cfg.IngestTimeout = result.Value.(time.Duration)
	if result.FallbackApplied {
		fallbackApplied = true
		metrics.RecordValidationError("ingest_timeout")
		metrics.RecordFallback("ingest_timeout", "default")
		for _, warning := range result.Warnings {
			logger.Warn("Configuration fallback applied",
				slog.String("field", "ingest_timeout"),
				slog.String("warning", warning))
		}
	}

	metrics.SetFallbackActive("", fallbackApplied)
	metrics.RecordLoadTimestamp()

	return &cfg, nil
}
