package access

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns public access request routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Submit)

	return r
}
