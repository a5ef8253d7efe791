// ABOUTME: Chi router for the rehab HTTP API.
// ABOUTME: All user data lives under /api/v1/users/{userID}.
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps request bodies; every payload here is a small JSON object.
const maxBodyBytes = 1 << 20

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware(h.log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(maxBodyBytes))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/catalog", h.Catalog)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/prescriptions", h.ListPrescriptions)
			r.Post("/prescriptions/initialize", h.InitializeAll)
			r.Get("/prescriptions/{exerciseID}", h.GetPrescription)
			r.Post("/prescriptions/{exerciseID}/tracking", h.RecordTracking)
			r.Post("/prescriptions/{exerciseID}/evaluate", h.Evaluate)
			r.Post("/prescriptions/{exerciseID}/initialize", h.Initialize)
			r.Get("/stats", h.Stats)
			r.Post("/irritability", h.CalculateIndex)
			r.Post("/surveys", h.SubmitSurvey)
			r.Get("/program", h.Program)
		})
	})

	return r
}
