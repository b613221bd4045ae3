/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/schedule         Stateless computation
  /api/euribor/*        Reference-rate paths
  /api/mortgages/*      Workspace
  /api/comparison       Side-by-side summaries
  /api/scenarios/*      Preset mortgages
  /metrics              Prometheus

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/schedule", h.ComputeSchedule)

		r.Route("/euribor", func(r chi.Router) {
			r.Post("/path", h.GenerateEuriborPath)
			r.Post("/preview", h.PreviewEuribor)
		})

		r.Route("/mortgages", func(r chi.Router) {
			r.Get("/", h.ListMortgages)
			r.Post("/", h.AddMortgage)
			r.Get("/{id}", h.GetMortgage)
			r.Put("/{id}", h.UpdateMortgage)
			r.Delete("/{id}", h.RemoveMortgage)
			r.Post("/{id}/clone", h.CloneMortgage)
			r.Post("/{id}/calculate", h.CalculateMortgage)
			r.Post("/{id}/activate", h.ActivateMortgage)
			r.Post("/{id}/periods", h.AddPeriod)
			r.Delete("/{id}/periods/{index}", h.RemovePeriod)
		})

		r.Get("/comparison", h.Compare)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Handle("/metrics", h.Metrics.Handler())

	return r
}
