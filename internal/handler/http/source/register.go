package source

import (
	"net/http"
)

// Register registers the source catalog handlers with the given mux.
func Register(mux *http.ServeMux, catalog Catalog) {
	mux.Handle("GET /sources", ListHandler{catalog})
}
