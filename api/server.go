/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the client app

SECURITY NOTE:
  Single-user deployment model; no authentication middleware. Put this
  behind an authenticating proxy for anything multi-tenant.

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
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Debt routes
		r.Route("/debt", func(r chi.Router) {
			r.Post("/calculate", h.CalculateDebt)
			r.Post("/validate", h.ValidateDebt)
			r.Get("/snapshot", h.GetSnapshot)
			r.Post("/progress", h.ApplyProgress)
			r.Post("/jobs", h.SubmitCalculationJob)
			r.Get("/jobs/{id}", h.GetCalculationJob)
		})

		// Prayer ledger routes
		r.Route("/prayers", func(r chi.Router) {
			r.Get("/today", h.GetToday)
			r.Get("/current", h.GetCurrentPrayer)
			r.Post("/complete", h.CompletePrayer)
			r.Get("/{date}", h.GetDailyRecord)
		})
	})

	return r
}
