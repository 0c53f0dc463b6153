// Package ingest orchestrates the listing pipeline: fetch every active
// source, normalize the raw records, drop stale and duplicate postings, and
// hand a bounded, date-ordered batch to the caller.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"engjobs/internal/domain/entity"
	"engjobs/internal/observability/metrics"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultWindowDays is the recency window applied when the caller does
	// not specify one.
	DefaultWindowDays = 14

	// DefaultMaxPostings bounds the size of a single run's output.
	DefaultMaxPostings = 300

	// sourceParallelism caps concurrent source fetches.
	sourceParallelism = 5
)

// SourceCatalog lists the sources a run should ingest.
type SourceCatalog interface {
	Active(ctx context.Context) ([]*entity.Source, error)
}

// Service runs the ingestion pipeline across all active sources.
type Service struct {
	Catalog    SourceCatalog
	Fetchers   map[entity.Transport]Fetcher
	Normalizer *Normalizer

	// MaxPostings bounds a run's output; the oldest postings are dropped
	// first. Zero means DefaultMaxPostings.
	MaxPostings int

	// Now supplies the clock for the recency cutoff. Defaults to time.Now.
	Now func() time.Time
}

// NewService creates an ingest Service with the provided dependencies.
func NewService(
	catalog SourceCatalog,
	fetchers map[entity.Transport]Fetcher,
	normalizer *Normalizer,
	maxPostings int,
) *Service {
	if maxPostings <= 0 {
		maxPostings = DefaultMaxPostings
	}
	return &Service{
		Catalog:     catalog,
		Fetchers:    fetchers,
		Normalizer:  normalizer,
		MaxPostings: maxPostings,
		Now:         time.Now,
	}
}

// RunStats describes what one ingestion run did.
type RunStats struct {
	Sources       int
	SourcesFailed int64
	RawItems      int64
	Invalid       int64
	TooOld        int64
	Duplicated    int64
	Capped        int64
	Postings      int
	Duration      time.Duration
}

// Run ingests every active source and returns the aggregated postings,
// oldest first. A failing source is logged and skipped; only source listing
// errors and context cancellation abort the run. days bounds how old a
// posting may be; zero or less means DefaultWindowDays.
func (s *Service) Run(ctx context.Context, days int) ([]*entity.Posting, *RunStats, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}

	logger := slog.Default()
	start := time.Now()
	stats := &RunStats{}

	srcs, err := s.Catalog.Active(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list active sources: %w", err)
	}
	stats.Sources = len(srcs)

	cutoff := s.Now().AddDate(0, 0, -days)

	// Each source writes into its own slot so the merged order is the
	// catalog order regardless of fetch completion order. Deduplication is
	// first-wins, so this keeps runs deterministic.
	results := make([][]*entity.Posting, len(srcs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(sourceParallelism)

	for i, src := range srcs {
		i, src := i, src
		eg.Go(func() error {
			postings, err := s.ingestSource(egCtx, src, cutoff, stats)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				atomic.AddInt64(&stats.SourcesFailed, 1)
				metrics.RecordSourceIngestError(src.Key, "fetch_failed")
				logger.Warn("source ingest failed, continuing with remaining sources",
					slog.String("source", src.Key),
					slog.String("url", src.URL),
					slog.Any("error", err))
				return nil
			}
			results[i] = postings
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, stats, err
	}

	var all []*entity.Posting
	for _, r := range results {
		all = append(all, r...)
	}

	deduped, duplicated := Dedupe(all)
	stats.Duplicated = duplicated

	SortAscending(deduped)

	capped, overflow := Cap(deduped, s.MaxPostings)
	stats.Capped = overflow
	stats.Postings = len(capped)
	stats.Duration = time.Since(start)

	metrics.RecordIngestRun(stats.Duration, stats.Postings)
	logger.Info("ingest run completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("sources_failed", stats.SourcesFailed),
		slog.Int64("raw_items", stats.RawItems),
		slog.Int64("invalid", stats.Invalid),
		slog.Int64("too_old", stats.TooOld),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int64("capped", stats.Capped),
		slog.Int("postings", stats.Postings),
		slog.Duration("duration", stats.Duration),
	)

	return capped, stats, nil
}

// ingestSource fetches one source and returns its normalized, recency
// filtered postings.
func (s *Service) ingestSource(
	ctx context.Context,
	src *entity.Source,
	cutoff time.Time,
	stats *RunStats,
) ([]*entity.Posting, error) {
	logger := slog.Default()
	sourceStart := time.Now()

	fetcher, ok := s.Fetchers[src.Transport]
	if !ok {
		return nil, fmt.Errorf("no fetcher registered for transport %q", src.Transport)
	}

	raws, err := fetcher.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s: %w", src.Key, err)
	}
	atomic.AddInt64(&stats.RawItems, int64(len(raws)))

	postings := make([]*entity.Posting, 0, len(raws))
	for _, raw := range raws {
		p, err := s.Normalizer.Normalize(raw, src)
		if err != nil {
			atomic.AddInt64(&stats.Invalid, 1)
			logger.Warn("skipping invalid record",
				slog.String("source", src.Key),
				slog.String("title", raw.Title),
				slog.Any("error", err))
			continue
		}
		postings = append(postings, p)
	}

	kept, tooOld := FilterRecent(postings, cutoff)
	atomic.AddInt64(&stats.TooOld, tooOld)

	sourceDuration := time.Since(sourceStart)
	metrics.RecordSourceIngest(src.Key, sourceDuration, len(raws))
	logger.Info("source ingest completed",
		slog.String("source", src.Key),
		slog.Int("raw_items", len(raws)),
		slog.Int("kept", len(kept)),
		slog.Duration("duration", sourceDuration),
	)

	return kept, nil
}
