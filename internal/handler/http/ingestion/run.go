// Package ingestion provides the HTTP trigger for manual ingest runs.
package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"engjobs/internal/domain/entity"
	"engjobs/internal/handler/http/respond"
	"engjobs/internal/usecase/ingest"
	"engjobs/internal/usecase/publish"
)

// maxWindowDays bounds the days parameter of a manual run.
const maxWindowDays = 365

// Runner executes an ingest run. The ingest service satisfies it.
type Runner interface {
	Run(ctx context.Context, days int) ([]*entity.Posting, *ingest.RunStats, error)
}

// Publisher stores and announces new postings. The publish service satisfies it.
type Publisher interface {
	PublishNew(ctx context.Context, postings []*entity.Posting) (*publish.Stats, error)
}

// RunResponse reports the outcome of a manual ingest run.
type RunResponse struct {
	Sources       int    `json:"sources"`
	SourcesFailed int64  `json:"sources_failed"`
	RawItems      int64  `json:"raw_items"`
	Postings      int    `json:"postings"`
	Inserted      int    `json:"inserted"`
	Duplicates    int    `json:"duplicates"`
	Failed        int    `json:"failed"`
	Duration      string `json:"duration"`
}

// RunHandler serves POST /ingest/run. The optional days parameter overrides
// the recency window for this run only.
type RunHandler struct {
	Runner    Runner
	Publisher Publisher
}

func (h RunHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	days := 0 // zero lets the ingest service apply its default window
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxWindowDays {
			respond.SafeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid days: must be between 1 and %d", maxWindowDays))
			return
		}
		days = n
	}

	start := time.Now()

	postings, runStats, err := h.Runner.Run(r.Context(), days)
	if err != nil {
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "ingest run failed", err))
		return
	}

	pubStats, err := h.Publisher.PublishNew(r.Context(), postings)
	if err != nil {
		respond.SafeErrorV2(w, http.StatusInternalServerError,
			respond.NewAppError(http.StatusInternalServerError, "publish failed", err))
		return
	}

	respond.JSON(w, http.StatusOK, RunResponse{
		Sources:       runStats.Sources,
		SourcesFailed: runStats.SourcesFailed,
		RawItems:      runStats.RawItems,
		Postings:      runStats.Postings,
		Inserted:      pubStats.Inserted,
		Duplicates:    pubStats.Duplicates,
		Failed:        pubStats.Failed,
		Duration:      time.Since(start).String(),
	})
}
