package categorize

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns public categorize routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Categorize)

	return r
}
