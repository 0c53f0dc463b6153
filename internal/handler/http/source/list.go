package source

import (
	"net/http"

	"engjobs/internal/domain/entity"
	"engjobs/internal/handler/http/respond"
)

// Catalog exposes the configured sources. The registry in internal/config
// satisfies it.
type Catalog interface {
	All() []*entity.Source
}

// ListHandler serves GET /sources, returning every configured source
// including inactive ones so operators can see what is switched off.
type ListHandler struct{ Catalog Catalog }

func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list := h.Catalog.All()
	out := make([]DTO, 0, len(list))
	for _, s := range list {
		out = append(out, DTO{
			Key:       s.Key,
			Name:      s.Name,
			URL:       s.URL,
			Transport: string(s.Transport),
			Dialect:   string(s.Dialect),
			RoleType:  string(s.RoleType()),
			Active:    s.Active,
		})
	}
	respond.JSON(w, http.StatusOK, out)
}
