// Package publish persists newly ingested postings and announces them.
// It runs after the ingestion pipeline: every posting that is not already
// stored gets inserted, dispatched to the notification channels, and marked
// as posted. Failures are per-posting and never abort the loop.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"engjobs/internal/domain/entity"
	"engjobs/internal/observability/metrics"
	"engjobs/internal/repository"
	"engjobs/internal/usecase/notify"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Stats summarizes a publish run.
type Stats struct {
	Inserted   int           // Postings stored and announced
	Duplicates int           // Postings skipped because the identity already exists
	Failed     int           // Postings that could not be stored
	Duration   time.Duration // Wall time of the run
}

// Service persists new postings and dispatches notifications for them.
type Service struct {
	repo     repository.PostingRepository
	notifier notify.Service
	logger   *slog.Logger
}

// NewService creates a publish service. notifier may be a service with zero
// channels when notifications are disabled.
func NewService(repo repository.PostingRepository, notifier notify.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// PublishNew stores every posting whose identity is not yet known, announces
// it on the notification channels, and marks it as posted.
//
// Postings whose identity already exists are counted as duplicates and
// skipped. Storage failures are logged and counted but do not stop the loop.
// The returned error is non-nil only when the run could not start at all.
func (s *Service) PublishNew(ctx context.Context, postings []*entity.Posting) (*Stats, error) {
	start := time.Now()
	stats := &Stats{}

	if len(postings) == 0 {
		stats.Duration = time.Since(start)
		return stats, nil
	}

	keys := make([]string, len(postings))
	for i, p := range postings {
		keys[i] = p.IdentityKey()
	}

	existing, err := s.repo.ExistsByIdentityBatch(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("check existing identities: %w", err)
	}

	for _, posting := range postings {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("publish interrupted: %w", err)
		}

		key := posting.IdentityKey()
		if existing[key] {
			stats.Duplicates++
			metrics.RecordPostingPublished("duplicate")
			continue
		}

		if err := s.repo.Create(ctx, posting); err != nil {
			// Another run may have inserted the same identity between the
			// batch check and this insert. Treat that as a duplicate.
			if isUniqueViolation(err) {
				stats.Duplicates++
				metrics.RecordPostingPublished("duplicate")
				continue
			}
			stats.Failed++
			metrics.RecordPostingPublished("failed")
			s.logger.Warn("failed to store posting",
				slog.String("identity_key", key),
				slog.String("source", posting.Source),
				slog.Any("error", err))
			continue
		}

		existing[key] = true
		stats.Inserted++
		metrics.RecordPostingPublished("inserted")

		// Dispatch is asynchronous and never returns an error to the caller.
		_ = s.notifier.NotifyNewPosting(ctx, posting)

		if err := s.repo.MarkPosted(ctx, posting.ID); err != nil {
			s.logger.Warn("failed to mark posting as posted",
				slog.Int64("posting_id", posting.ID),
				slog.String("identity_key", key),
				slog.Any("error", err))
		}
	}

	stats.Duration = time.Since(start)

	s.logger.Info("publish run complete",
		slog.Int("inserted", stats.Inserted),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("failed", stats.Failed),
		slog.Duration("duration", stats.Duration))

	return stats, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
