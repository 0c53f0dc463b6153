package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch metrics, labelled by channel so a flaky Slack webhook shows
// up separately from a healthy Discord one.
var (
	dispatchedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dispatched_total",
		Help: "Total number of notifications dispatched",
	}, []string{"channel"})

	sentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_sent_total",
		Help: "Total number of notifications sent",
	}, []string{"channel", "status"})

	sendDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_duration_seconds",
		Help:    "Notification send duration in seconds",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
	}, []string{"channel"})

	breakerOpenTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_circuit_breaker_open_total",
		Help: "Total number of circuit breaker open events",
	}, []string{"channel"})

	// reason is pool_full, circuit_open, or disabled.
	droppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_dropped_total",
		Help: "Total number of dropped notifications",
	}, []string{"channel", "reason"})

	activeSends = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_active_goroutines",
		Help: "Number of active notification goroutines",
	})

	channelsEnabled = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "notification_channels_enabled",
		Help: "Number of enabled notification channels",
	})
)

// RecordDispatch counts an announcement handed to a channel sender.
func RecordDispatch(channel string) {
	dispatchedTotal.WithLabelValues(channel).Inc()
}

// RecordSuccess counts a delivered announcement and its send time.
func RecordSuccess(channel string, duration time.Duration) {
	sentTotal.WithLabelValues(channel, "success").Inc()
	sendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordFailure counts a failed send and its time spent.
func RecordFailure(channel string, duration time.Duration) {
	sentTotal.WithLabelValues(channel, "failure").Inc()
	sendDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordDropped counts an announcement that never reached the sender.
func RecordDropped(channel string, reason string) {
	droppedTotal.WithLabelValues(channel, reason).Inc()
}

// RecordCircuitBreakerOpen counts a channel entering its disable window.
func RecordCircuitBreakerOpen(channel string) {
	breakerOpenTotal.WithLabelValues(channel).Inc()
}

func IncrementActiveGoroutines() {
	activeSends.Inc()
}

func DecrementActiveGoroutines() {
	activeSends.Dec()
}

// SetChannelsEnabled publishes how many channels are currently enabled.
func SetChannelsEnabled(count float64) {
	channelsEnabled.Set(count)
}
