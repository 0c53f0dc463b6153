package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvString(t *testing.T) {
	t.Run("set", func(t *testing.T) {
		t.Setenv("SOURCES_PATH", "/etc/engjobs/sources.yaml")
		assert.Equal(t, "/etc/engjobs/sources.yaml", LoadEnvString("SOURCES_PATH", ""))
	})

	t.Run("unset yields default", func(t *testing.T) {
		assert.Equal(t, "fallback", LoadEnvString("SOURCES_PATH_UNSET", "fallback"))
	})

	t.Run("empty counts as unset", func(t *testing.T) {
		t.Setenv("SOURCES_PATH", "")
		assert.Equal(t, "fallback", LoadEnvString("SOURCES_PATH", "fallback"))
	})
}

func TestLoadEnvWithFallback(t *testing.T) {
	t.Run("valid value passes through", func(t *testing.T) {
		t.Setenv("CRON_SCHEDULE", "0 6 * * *")
		result := LoadEnvWithFallback("CRON_SCHEDULE", "@hourly", ValidateCronSchedule)
		assert.Equal(t, "0 6 * * *", result.Value)
		assert.False(t, result.FallbackApplied)
		assert.Empty(t, result.Warnings)
	})

	t.Run("unset yields default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("CRON_SCHEDULE_UNSET", "@hourly", ValidateCronSchedule)
		assert.Equal(t, "@hourly", result.Value)
		assert.False(t, result.FallbackApplied)
		assert.Empty(t, result.Warnings)
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("CRON_SCHEDULE", "not a schedule")
		result := LoadEnvWithFallback("CRON_SCHEDULE", "@hourly", ValidateCronSchedule)
		assert.Equal(t, "@hourly", result.Value)
		assert.True(t, result.FallbackApplied)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "CRON_SCHEDULE")
		assert.Contains(t, result.Warnings[0], "falling back to default")
	})

	t.Run("nil validator accepts anything", func(t *testing.T) {
		t.Setenv("CRON_SCHEDULE", "whatever")
		result := LoadEnvWithFallback("CRON_SCHEDULE", "@hourly", nil)
		assert.Equal(t, "whatever", result.Value)
		assert.False(t, result.FallbackApplied)
	})
}

func TestLoadEnvDuration(t *testing.T) {
	validate := func(d time.Duration) error {
		return ValidateDuration(d, 1*time.Minute, 4*time.Hour)
	}

	t.Run("valid duration", func(t *testing.T) {
		t.Setenv("INGEST_TIMEOUT", "45m")
		result := LoadEnvDuration("INGEST_TIMEOUT", 30*time.Minute, validate)
		assert.Equal(t, 45*time.Minute, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unset yields default", func(t *testing.T) {
		result := LoadEnvDuration("INGEST_TIMEOUT_UNSET", 30*time.Minute, validate)
		assert.Equal(t, 30*time.Minute, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unparseable falls back", func(t *testing.T) {
		t.Setenv("INGEST_TIMEOUT", "thirty minutes")
		result := LoadEnvDuration("INGEST_TIMEOUT", 30*time.Minute, validate)
		assert.Equal(t, 30*time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "INGEST_TIMEOUT")
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("INGEST_TIMEOUT", "10s")
		result := LoadEnvDuration("INGEST_TIMEOUT", 30*time.Minute, validate)
		assert.Equal(t, 30*time.Minute, result.Value)
		assert.True(t, result.FallbackApplied)
	})
}

func TestLoadEnvInt(t *testing.T) {
	validate := func(v int) error { return ValidateIntRange(v, 1, 365) }

	t.Run("valid integer", func(t *testing.T) {
		t.Setenv("INGEST_DAYS", "21")
		result := LoadEnvInt("INGEST_DAYS", 14, validate)
		assert.Equal(t, 21, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unset yields default", func(t *testing.T) {
		result := LoadEnvInt("INGEST_DAYS_UNSET", 14, validate)
		assert.Equal(t, 14, result.Value)
		assert.False(t, result.FallbackApplied)
	})

	t.Run("non-numeric falls back", func(t *testing.T) {
		for _, raw := range []string{"fourteen", "14.5", "14 days"} {
			t.Setenv("INGEST_DAYS", raw)
			result := LoadEnvInt("INGEST_DAYS", 14, validate)
			assert.Equal(t, 14, result.Value, "raw=%q", raw)
			assert.True(t, result.FallbackApplied, "raw=%q", raw)
			require.Len(t, result.Warnings, 1)
			assert.Contains(t, result.Warnings[0], "invalid integer format")
		}
	})

	t.Run("out of range falls back", func(t *testing.T) {
		t.Setenv("INGEST_DAYS", "0")
		result := LoadEnvInt("INGEST_DAYS", 14, validate)
		assert.Equal(t, 14, result.Value)
		assert.True(t, result.FallbackApplied)
	})

	t.Run("negative parses and is range checked", func(t *testing.T) {
		t.Setenv("INGEST_DAYS", "-3")
		result := LoadEnvInt("INGEST_DAYS", 14, validate)
		assert.Equal(t, 14, result.Value)
		assert.True(t, result.FallbackApplied)
		require.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "below minimum")
	})
}
