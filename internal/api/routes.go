package api

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the course endpoints on r.
func (h *CourseHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/courses", func(r chi.Router) {
		r.Post("/generate", h.GenerateCourse)
		r.Route("/{id}", func(r chi.Router) {
			r.Post("/validate", h.ValidateCourse)
			r.Get("/generation-status", h.GenerationStatus)
			r.Get("/validations", h.ValidationHistory)
		})
	})
}
