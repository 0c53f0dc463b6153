package posting

import (
	"net/http"

	"engjobs/internal/handler/http/respond"
	"engjobs/internal/repository"
)

// StatsDTO summarizes the posting table for GET /stats.
type StatsDTO struct {
	Total    int64            `json:"total"`
	Posted   int64            `json:"posted"`
	Unposted int64            `json:"unposted"`
	BySource []SourceCountDTO `json:"by_source"`
}

type SourceCountDTO struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
}

// StatsHandler serves GET /stats.
type StatsHandler struct{ Repo repository.PostingRepository }

func (h StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Repo.Stats(r.Context())
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	bySource := make([]SourceCountDTO, 0, len(stats.BySource))
	for _, sc := range stats.BySource {
		bySource = append(bySource, SourceCountDTO{Source: sc.Source, Count: sc.Count})
	}

	respond.JSON(w, http.StatusOK, StatsDTO{
		Total:    stats.Total,
		Posted:   stats.Posted,
		Unposted: stats.Total - stats.Posted,
		BySource: bySource,
	})
}
