package usage

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns public usage routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/last", h.Last)

	return r
}
