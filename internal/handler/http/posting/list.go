package posting

import (
	"fmt"
	"net/http"
	"strconv"

	"engjobs/internal/handler/http/respond"
	"engjobs/internal/repository"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

// ListHandler serves GET /postings. The optional source parameter restricts
// the result to one source key; limit bounds the result size.
type ListHandler struct{ Repo repository.PostingRepository }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respond.SafeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit: must be a positive integer"))
			return
		}
		if n > maxLimit {
			n = maxLimit
		}
		limit = n
	}

	source := r.URL.Query().Get("source")

	list, err := h.Repo.ListRecent(r.Context(), source, limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	// The repository returns newest first; the API serves oldest first so
	// clients read postings in announcement order.
	out := make([]DTO, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		e := list[i]
		out = append(out, DTO{
			ID:         e.ID,
			Title:      e.Title,
			Company:    e.Company,
			Location:   e.Location,
			URL:        e.URL,
			DatePosted: e.DatePosted,
			RoleType:   string(e.RoleType),
			Source:     e.Source,
			Posted:     e.Posted,
			CreatedAt:  e.CreatedAt,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
