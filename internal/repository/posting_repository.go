package repository

import (
	"context"

	"engjobs/internal/domain/entity"
)

// SourceCount pairs a source key with its posting count.
type SourceCount struct {
	Source string
	Count  int64
}

// PostingStats summarizes the posting table.
type PostingStats struct {
	Total    int64
	Posted   int64
	BySource []SourceCount
}

// PostingRepository stores normalized postings and tracks which ones have
// been announced.
type PostingRepository interface {
	// ListRecent retrieves the most recent postings, newest first.
	// An empty source means all sources; limit bounds the result size.
	ListRecent(ctx context.Context, source string, limit int) ([]*entity.Posting, error)

	// Create inserts a posting and fills in its ID and CreatedAt.
	Create(ctx context.Context, posting *entity.Posting) error

	// ExistsByIdentity reports whether a posting with the given identity
	// key is already stored.
	ExistsByIdentity(ctx context.Context, key string) (bool, error)

	// ExistsByIdentityBatch checks many identity keys in one query.
	// Keys absent from the result map are not stored.
	ExistsByIdentityBatch(ctx context.Context, keys []string) (map[string]bool, error)

	// MarkPosted flags a posting as announced.
	MarkPosted(ctx context.Context, id int64) error

	// Stats returns posting totals overall and per source.
	Stats(ctx context.Context) (*PostingStats, error)
}
