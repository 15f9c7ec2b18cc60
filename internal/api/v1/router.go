package v1

import (
	"github.com/go-chi/chi/v5"
)

// NewRouter builds the v1 routes; mount it under /api.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", h.GetStatus)
		r.Post("/close", h.Close)
		r.Route("/system", func(r chi.Router) {
			r.Get("/logs", h.GetLogs)
		})
	})
	return r
}
