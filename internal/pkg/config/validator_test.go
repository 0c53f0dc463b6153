package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []struct {
		name     string
		schedule string
	}{
		{"hourly descriptor", "@hourly"},
		{"daily at 5:30", "30 5 * * *"},
		{"every 6 hours", "0 */6 * * *"},
		{"weekdays at 9:30", "30 9 * * 1-5"},
		{"every minute", "* * * * *"},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateCronSchedule(tt.schedule))
		})
	}

	invalid := []struct {
		name     string
		schedule string
	}{
		{"empty", ""},
		{"too few fields", "0 0"},
		{"minute out of range", "60 0 * * *"},
		{"hour out of range", "0 24 * * *"},
		{"random text", "once an hour"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCronSchedule(tt.schedule)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid cron schedule")
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "America/New_York", "Asia/Tokyo"} {
		assert.NoError(t, ValidateTimezone(tz), tz)
	}

	invalid := []struct {
		name string
		tz   string
	}{
		{"empty", ""},
		{"typo", "America/NewYork"},
		{"offset instead of name", "+09:00"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimezone(tt.tz)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), "invalid timezone")
		})
	}
}

func TestValidateDuration(t *testing.T) {
	min, max := 1*time.Minute, 4*time.Hour

	assert.NoError(t, ValidateDuration(30*time.Minute, min, max))
	assert.NoError(t, ValidateDuration(min, min, max), "lower bound is inclusive")
	assert.NoError(t, ValidateDuration(max, min, max), "upper bound is inclusive")

	if err := ValidateDuration(10*time.Second, min, max); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "below minimum")
	}
	if err := ValidateDuration(5*time.Hour, min, max); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "exceeds maximum")
	}
	if err := ValidateDuration(time.Minute, max, min); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "invalid range")
	}
}

func TestValidateIntRange(t *testing.T) {
	assert.NoError(t, ValidateIntRange(14, 1, 365))
	assert.NoError(t, ValidateIntRange(1, 1, 365), "lower bound is inclusive")
	assert.NoError(t, ValidateIntRange(365, 1, 365), "upper bound is inclusive")

	if err := ValidateIntRange(0, 1, 365); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "below minimum")
	}
	if err := ValidateIntRange(400, 1, 365); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "exceeds maximum")
	}
	if err := ValidateIntRange(5, 10, 1); assert.Error(t, err) {
		assert.Contains(t, err.Error(), "invalid range")
	}
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.NoError(t, ValidatePositiveDuration(30*time.Minute))
	assert.Error(t, ValidatePositiveDuration(0))
	assert.Error(t, ValidatePositiveDuration(-time.Second))
}
