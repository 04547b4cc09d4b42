package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns admin routes; everything except login requires a token
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(h.jwtSvc))

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", h.CreateAccount)
			r.Get("/", h.ListAccounts)
			r.Get("/{code}", h.GetAccount)
			r.Post("/{code}/grant", h.Grant)
		})

		r.Get("/usage", h.ListUsage)
	})

	return r
}
