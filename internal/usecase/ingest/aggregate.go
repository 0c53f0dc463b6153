package ingest

import (
	"sort"
	"time"

	"engjobs/internal/domain/entity"
)

// Dedupe removes postings whose identity key has already been seen,
// keeping the first occurrence. Input order decides the winner, so callers
// concatenate per-source results in catalog order before calling this.
// Returns the kept postings and the number dropped.
func Dedupe(postings []*entity.Posting) ([]*entity.Posting, int64) {
	seen := make(map[string]bool, len(postings))
	kept := postings[:0]
	var dropped int64

	for _, p := range postings {
		key := p.IdentityKey()
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, p)
	}
	return kept, dropped
}

// SortAscending orders postings by date, oldest first. The sort is stable so
// same-date postings keep their source order.
func SortAscending(postings []*entity.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		return postings[i].DatePosted.Before(postings[j].DatePosted)
	})
}

// Cap trims an ascending-sorted slice to at most max postings, dropping the
// oldest. A max of zero or less means unlimited.
func Cap(postings []*entity.Posting, max int) ([]*entity.Posting, int64) {
	if max <= 0 || len(postings) <= max {
		return postings, 0
	}
	dropped := int64(len(postings) - max)
	return postings[len(postings)-max:], dropped
}

// FilterRecent keeps postings dated at or after the cutoff.
// Returns the kept postings and the number dropped as too old.
func FilterRecent(postings []*entity.Posting, cutoff time.Time) ([]*entity.Posting, int64) {
	kept := postings[:0]
	var dropped int64

	for _, p := range postings {
		if p.DatePosted.Before(cutoff) {
			dropped++
			continue
		}
		kept = append(kept, p)
	}
	return kept, dropped
}
