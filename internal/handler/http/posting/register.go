package posting

import (
	"net/http"

	"engjobs/internal/repository"
)

// Register registers the posting browsing handlers with the given mux.
func Register(mux *http.ServeMux, repo repository.PostingRepository) {
	mux.Handle("GET /postings", ListHandler{repo})
	mux.Handle("GET /stats", StatsHandler{repo})
}
