// Package notifier provides abstraction for announcing new job postings.
// It defines the Notifier interface which allows different delivery
// mechanisms (Discord, Slack, etc.) to be used interchangeably through
// dependency injection.
//
// The package includes webhook implementations for Discord and Slack and a
// no-op notifier for when notifications are disabled.
package notifier

import (
	"context"

	"engjobs/internal/domain/entity"
)

// Notifier is an interface for announcing job postings.
// Implementations should handle rate limiting, retries, and error logging
// internally, generate a request ID for tracing, and respect context
// cancellation.
type Notifier interface {
	// NotifyPosting sends a notification about a newly stored posting.
	// Returns a non-nil error if the notification failed after all retry
	// attempts.
	NotifyPosting(ctx context.Context, posting *entity.Posting) error
}
