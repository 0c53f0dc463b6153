package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ConfigMetrics exposes the configuration health of one component
// (worker, api) to Prometheus. Metric names are prefixed with the
// component name, so each component must use a unique prefix: promauto
// registers against the default registry and panics on collision.
//
//	{component}_config_load_timestamp
//	{component}_config_validation_errors_total (by field)
//	{component}_config_fallbacks_total (by field)
//	{component}_config_fallback_active
type ConfigMetrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge

	componentName string
}

// NewConfigMetrics creates and registers the configuration metrics for
// the named component.
func NewConfigMetrics(componentName string) *ConfigMetrics {
	gauge := func(suffix, help string) prometheus.Gauge {
		return promauto.NewGauge(prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_config_%s", componentName, suffix),
			Help: help,
		})
	}
	counterVec := func(suffix, help string) *prometheus.CounterVec {
		return promauto.NewCounterVec(prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_config_%s", componentName, suffix),
			Help: help,
		}, []string{"field"})
	}

	return &ConfigMetrics{
		LoadTimestamp: gauge("load_timestamp",
			fmt.Sprintf("Unix timestamp of last %s configuration load", componentName)),
		ValidationErrorsTotal: counterVec("validation_errors_total",
			fmt.Sprintf("Total number of %s configuration validation errors", componentName)),
		FallbacksTotal: counterVec("fallbacks_total",
			fmt.Sprintf("Total number of %s configuration fallback operations", componentName)),
		FallbackActive: gauge("fallback_active",
			fmt.Sprintf("1 if any %s configuration fallback is active, 0 otherwise", componentName)),
		componentName: componentName,
	}
}

// RecordLoadTimestamp marks the current time as the last configuration load.
func (m *ConfigMetrics) RecordLoadTimestamp() {
	m.LoadTimestamp.SetToCurrentTime()
}

// RecordValidationError counts a validation failure for the given field.
func (m *ConfigMetrics) RecordValidationError(field string) {
	m.ValidationErrorsTotal.WithLabelValues(field).Inc()
}

// RecordFallback counts a fallback applied for the given field. The
// fallbackType argument is accepted for call-site symmetry but is not a
// label; cardinality stays bounded by field names.
func (m *ConfigMetrics) RecordFallback(field, fallbackType string) {
	m.FallbacksTotal.WithLabelValues(field).Inc()
}

// SetFallbackActive flips the fallback-active gauge. The field argument
// is informational only.
func (m *ConfigMetrics) SetFallbackActive(field string, active bool) {
	if active {
		m.FallbackActive.Set(1)
	} else {
		m.FallbackActive.Set(0)
	}
}
