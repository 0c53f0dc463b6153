package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"engjobs/internal/domain/entity"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

const (
	// failureThreshold consecutive send failures disable a channel for
	// disableWindow before it gets traffic again.
	failureThreshold = 5
	disableWindow    = 5 * time.Minute

	// slotWait bounds how long a dispatch waits for a pool slot before
	// the announcement is dropped instead of queued.
	slotWait    = 5 * time.Second
	sendTimeout = 30 * time.Second
)

// Service fans announcements for newly stored postings out to the
// configured channels without blocking the ingest pipeline.
type Service interface {
	// NotifyNewPosting queues the posting for every enabled channel and
	// returns immediately. Send failures are logged, not propagated.
	NotifyNewPosting(ctx context.Context, posting *entity.Posting) error

	// GetChannelHealth reports per-channel state for the health endpoint.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown waits for in-flight sends until ctx expires.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus is one channel's entry in the health report.
type ChannelHealthStatus struct {
	Name               string
	Enabled            bool
	CircuitBreakerOpen bool
	DisabledUntil      *time.Time
}

type service struct {
	channels       []Channel
	workerPool     chan struct{}
	channelHealth  map[string]*channelHealth
	healthMu       sync.RWMutex
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// channelHealth is the per-channel failure counter behind the disable
// window.
type channelHealth struct {
	consecutiveFailures int
	disabledUntil       time.Time
	mu                  sync.Mutex
}

// NewService builds the dispatcher. maxConcurrent caps simultaneous
// webhook sends across all channels.
func NewService(channels []Channel, maxConcurrent int) Service {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}
	for _, ch := range channels {
		svc.channelHealth[ch.Name()] = &channelHealth{}
	}
	return svc
}

func (s *service) NotifyNewPosting(ctx context.Context, posting *entity.Posting) error {
	if posting == nil {
		slog.Warn("Invalid notification input: nil posting")
		return nil
	}

	// Inherit the caller's request id when the trigger came through the
	// admin API; otherwise mint one for this dispatch.
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		requestID = uuid.New().String()
	}

	enabled := 0
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled++
		}
	}
	SetChannelsEnabled(float64(enabled))

	if enabled == 0 {
		slog.Debug("No notification channels enabled",
			slog.String("request_id", requestID),
			slog.Int64("posting_id", posting.ID))
		return nil
	}

	slog.Info("Dispatching posting notification",
		slog.String("request_id", requestID),
		slog.Int64("posting_id", posting.ID),
		slog.String("identity_key", posting.IdentityKey()),
		slog.Int("enabled_channels", enabled))

	for _, ch := range s.channels {
		if !ch.IsEnabled() {
			continue
		}
		channel := ch
		s.wg.Add(1)
		go s.notifyChannel(requestID, channel, posting)
	}
	return nil
}

func (s *service) notifyChannel(requestID string, channel Channel, posting *entity.Posting) {
	defer s.wg.Done()

	IncrementActiveGoroutines()
	defer DecrementActiveGoroutines()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in notification channel",
				slog.String("request_id", requestID),
				slog.String("channel", channel.Name()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-time.After(slotWait):
		slog.Warn("Notification dropped: worker pool full",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()))
		RecordDropped(channel.Name(), "pool_full")
		return
	}

	health := s.getChannelHealth(channel.Name())
	health.mu.Lock()
	if time.Now().Before(health.disabledUntil) {
		disabledUntil := health.disabledUntil
		health.mu.Unlock()
		slog.Warn("Channel temporarily disabled after repeated failures",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Time("disabled_until", disabledUntil))
		RecordDropped(channel.Name(), "circuit_open")
		return
	}
	health.mu.Unlock()

	// Derive from the shutdown context so Shutdown cancels stragglers.
	ctx, cancel := context.WithTimeout(s.shutdownCtx, sendTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, requestIDKey, requestID)

	start := time.Now()
	RecordDispatch(channel.Name())

	err := channel.Send(ctx, posting)
	duration := time.Since(start)

	s.recordOutcome(requestID, channel, health, err)

	if err != nil {
		RecordFailure(channel.Name(), duration)
		slog.Warn("Channel notification failed",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int64("posting_id", posting.ID),
			slog.String("url", posting.URL),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}

	RecordSuccess(channel.Name(), duration)
	slog.Info("Channel notification sent successfully",
		slog.String("request_id", requestID),
		slog.String("channel", channel.Name()),
		slog.Int64("posting_id", posting.ID),
		slog.String("title", posting.Title),
		slog.Duration("send_duration", duration))
}

// recordOutcome advances or resets the failure counter and opens the
// disable window at the threshold.
func (s *service) recordOutcome(requestID string, channel Channel, health *channelHealth, err error) {
	health.mu.Lock()
	defer health.mu.Unlock()

	if err == nil {
		health.consecutiveFailures = 0
		return
	}

	health.consecutiveFailures++
	if health.consecutiveFailures >= failureThreshold {
		health.disabledUntil = time.Now().Add(disableWindow)
		slog.Error("Channel disabled after consecutive failures",
			slog.String("request_id", requestID),
			slog.String("channel", channel.Name()),
			slog.Int("consecutive_failures", health.consecutiveFailures))
		RecordCircuitBreakerOpen(channel.Name())
	}
}

func (s *service) getChannelHealth(channelName string) *channelHealth {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()
	return s.channelHealth[channelName]
}

func (s *service) GetChannelHealth() []ChannelHealthStatus {
	s.healthMu.RLock()
	defer s.healthMu.RUnlock()

	statuses := make([]ChannelHealthStatus, 0, len(s.channels))
	for _, ch := range s.channels {
		health := s.channelHealth[ch.Name()]

		health.mu.Lock()
		var disabledUntil *time.Time
		open := time.Now().Before(health.disabledUntil)
		if open {
			until := health.disabledUntil
			disabledUntil = &until
		}
		health.mu.Unlock()

		statuses = append(statuses, ChannelHealthStatus{
			Name:               ch.Name(),
			Enabled:            ch.IsEnabled(),
			CircuitBreakerOpen: open,
			DisabledUntil:      disabledUntil,
		})
	}
	return statuses
}

func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down notification service")
	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("Notification service shutdown timeout")
		return ctx.Err()
	}
}
