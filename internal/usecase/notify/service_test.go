package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"engjobs/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCalls polls a mock channel until it has seen at least n calls or the
// timeout expires.
func waitForCalls(t *testing.T, ch *mockChannel, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if ch.callCount() >= n {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("channel %s saw %d calls, expected at least %d", ch.name, ch.callCount(), n)
}

// TestNotifyNewPosting_NoChannelsEnabled verifies no-op when all channels are disabled
func TestNotifyNewPosting_NoChannelsEnabled(t *testing.T) {
	// Arrange
	discord := &mockChannel{name: "discord", enabled: false}
	slack := &mockChannel{name: "slack", enabled: false}
	svc := NewService([]Channel{discord, slack}, 10)

	// Act
	err := svc.NotifyNewPosting(context.Background(), notifyTestPosting())

	// Assert
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(shutdownCtx))

	assert.Equal(t, 0, discord.callCount())
	assert.Equal(t, 0, slack.callCount())
}

// TestNotifyNewPosting_DispatchesToEnabledChannels verifies fan-out to all enabled channels
func TestNotifyNewPosting_DispatchesToEnabledChannels(t *testing.T) {
	// Arrange
	discord := &mockChannel{name: "discord", enabled: true}
	slack := &mockChannel{name: "slack", enabled: true}
	disabled := &mockChannel{name: "disabled", enabled: false}
	svc := NewService([]Channel{discord, slack, disabled}, 10)

	posting := notifyTestPosting()

	// Act
	err := svc.NotifyNewPosting(context.Background(), posting)

	// Assert
	require.NoError(t, err)
	waitForCalls(t, discord, 1, 2*time.Second)
	waitForCalls(t, slack, 1, 2*time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(shutdownCtx))

	assert.Equal(t, 0, disabled.callCount())
	assert.Equal(t, posting, discord.last)
}

// TestNotifyNewPosting_NilPosting verifies nil input is rejected without spawning goroutines
func TestNotifyNewPosting_NilPosting(t *testing.T) {
	// Arrange
	discord := &mockChannel{name: "discord", enabled: true}
	svc := NewService([]Channel{discord}, 10)

	// Act
	err := svc.NotifyNewPosting(context.Background(), nil)

	// Assert
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(shutdownCtx))

	assert.Equal(t, 0, discord.callCount())
}

// TestNotifyNewPosting_FailingChannelIsolated verifies one channel's failure
// does not affect the others
func TestNotifyNewPosting_FailingChannelIsolated(t *testing.T) {
	// Arrange
	failing := &mockChannel{name: "discord", enabled: true, sendErr: errors.New("webhook error")}
	healthy := &mockChannel{name: "slack", enabled: true}
	svc := NewService([]Channel{failing, healthy}, 10)

	// Act
	err := svc.NotifyNewPosting(context.Background(), notifyTestPosting())

	// Assert
	require.NoError(t, err)
	waitForCalls(t, failing, 1, 2*time.Second)
	waitForCalls(t, healthy, 1, 2*time.Second)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(shutdownCtx))
}

// TestCircuitBreaker_OpensAfterConsecutiveFailures verifies the per-channel
// circuit breaker opens at the failure threshold and drops further sends
func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	// Arrange
	failing := &mockChannel{name: "discord", enabled: true, sendErr: errors.New("webhook error")}
	svc := NewService([]Channel{failing}, 10)
	posting := notifyTestPosting()

	// Act - drive the channel to the failure threshold
	for i := 0; i < failureThreshold; i++ {
		require.NoError(t, svc.NotifyNewPosting(context.Background(), posting))
		waitForCalls(t, failing, i+1, 2*time.Second)
	}

	// Assert - circuit breaker is now open. The breaker state is updated just
	// after Send returns, so poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st := svc.GetChannelHealth(); len(st) == 1 && st[0].CircuitBreakerOpen {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	statuses := svc.GetChannelHealth()
	require.Len(t, statuses, 1)
	assert.Equal(t, "discord", statuses[0].Name)
	assert.True(t, statuses[0].CircuitBreakerOpen)
	require.NotNil(t, statuses[0].DisabledUntil)
	assert.True(t, statuses[0].DisabledUntil.After(time.Now()))

	// Act - further notifications are dropped without calling the channel
	require.NoError(t, svc.NotifyNewPosting(context.Background(), posting))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, svc.Shutdown(shutdownCtx))

	assert.Equal(t, failureThreshold, failing.callCount())
}

// TestGetChannelHealth_ClosedBreaker verifies health reporting for healthy channels
func TestGetChannelHealth_ClosedBreaker(t *testing.T) {
	// Arrange
	discord := &mockChannel{name: "discord", enabled: true}
	slack := &mockChannel{name: "slack", enabled: false}
	svc := NewService([]Channel{discord, slack}, 10)

	// Act
	statuses := svc.GetChannelHealth()

	// Assert
	require.Len(t, statuses, 2)

	assert.Equal(t, "discord", statuses[0].Name)
	assert.True(t, statuses[0].Enabled)
	assert.False(t, statuses[0].CircuitBreakerOpen)
	assert.Nil(t, statuses[0].DisabledUntil)

	assert.Equal(t, "slack", statuses[1].Name)
	assert.False(t, statuses[1].Enabled)
}

// TestShutdown_WaitsForInFlightNotifications verifies graceful shutdown
func TestShutdown_WaitsForInFlightNotifications(t *testing.T) {
	// Arrange
	slow := &slowChannel{mockChannel: mockChannel{name: "discord", enabled: true}, delay: 100 * time.Millisecond}
	svc := NewService([]Channel{slow}, 10)

	require.NoError(t, svc.NotifyNewPosting(context.Background(), notifyTestPosting()))

	// Act
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := svc.Shutdown(shutdownCtx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, slow.callCount())
}

// slowChannel delays Send to exercise shutdown waiting.
type slowChannel struct {
	mockChannel
	delay time.Duration
}

func (s *slowChannel) Send(ctx context.Context, posting *entity.Posting) error {
	// Deliberately ignores cancellation so Shutdown has to wait it out.
	time.Sleep(s.delay)
	return s.mockChannel.Send(ctx, posting)
}
