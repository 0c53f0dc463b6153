package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"engjobs/internal/usecase/notify"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChannelHealthResponse is the body of GET /health/channels.
type ChannelHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Channels []ChannelStatus `json:"channels"`
}

// ChannelStatus mirrors one notify.ChannelHealthStatus on the wire.
type ChannelStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

// startMetricsServer serves /metrics, /health, and /health/channels on
// METRICS_PORT (default 9090) until ctx is canceled. The returned server
// is already listening in the background.
func startMetricsServer(ctx context.Context, logger *slog.Logger, notifyService notify.Service) *http.Server {
	port := metricsPort()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/health/channels", channelHealthHandler(notifyService))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
			return
		}
		logger.Info("metrics server stopped")
	}()

	return server
}

// metricsPort reads METRICS_PORT, keeping 9090 for unset or invalid
// values.
func metricsPort() int {
	raw := os.Getenv("METRICS_PORT")
	if raw == "" {
		return 9090
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}
	return port
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// channelHealthHandler reports 503 when any enabled channel is sitting
// out a failure window, so alerting can page on silent announcements.
func channelHealthHandler(notifyService notify.Service) http.HandlerFunc {
	if notifyService == nil {
		return func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error": "notification service not initialized",
			})
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		statuses := notifyService.GetChannelHealth()

		channels := make([]ChannelStatus, 0, len(statuses))
		healthy := true
		for _, status := range statuses {
			channels = append(channels, ChannelStatus{
				Name:               status.Name,
				Enabled:            status.Enabled,
				CircuitBreakerOpen: status.CircuitBreakerOpen,
				DisabledUntil:      status.DisabledUntil,
			})
			if status.Enabled && status.CircuitBreakerOpen {
				healthy = false
			}
		}

		code := http.StatusOK
		if !healthy {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, ChannelHealthResponse{Healthy: healthy, Channels: channels})
	}
}
