package notifier

import (
	"context"

	"engjobs/internal/domain/entity"
)

// NoOpNotifier satisfies the notifier contract without sending anything.
// Wiring it in when no webhook is configured spares the callers a nil
// check per announcement.
type NoOpNotifier struct{}

func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyPosting discards the posting.
func (n *NoOpNotifier) NotifyPosting(ctx context.Context, posting *entity.Posting) error {
	return nil
}
