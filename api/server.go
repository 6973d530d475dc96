/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend
  5. Identity:   Actor resolution (only under /api)

ROUTE GROUPS:
  /api/intervals/*       Interval ledger
  /api/leave-requests/*  Leave workflow
  /api/balance           Leave balances
  /api/reports/*         Compliance and aggregation
  /api/employees/*       Employee records
  /healthz               Liveness (no identity required)

The Prometheus /metrics endpoint is served on a separate listener; see
cmd/server/main.go.

SEE ALSO:
  - handlers.go: Handler implementations
  - identity.go: Actor middleware
*/
package api

import (
	"net/http"

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
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Employee-Id", "X-Employee-Role"},
		AllowCredentials: true,
	}))

	// Liveness probe, outside the identity requirement.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(Identity)

		// Interval routes
		r.Route("/intervals", func(r chi.Router) {
			r.Post("/", h.CreateInterval)
			r.Get("/", h.ListIntervals)
			r.Post("/start", h.StartInterval)
			r.Get("/pending", h.PendingIntervals)
			r.Post("/{id}/stop", h.StopInterval)
			r.Post("/{id}/approve", h.ApproveInterval)
			r.Patch("/{id}", h.PatchInterval)
			r.Delete("/{id}", h.DeleteInterval)
		})

		// Leave request routes
		r.Route("/leave-requests", func(r chi.Router) {
			r.Post("/", h.CreateLeaveRequest)
			r.Get("/", h.ListLeaveRequests)
			r.Get("/pending", h.PendingLeaveRequests)
			r.Post("/{id}/approve", h.ApproveLeaveRequest)
			r.Post("/{id}/reject", h.RejectLeaveRequest)
			r.Post("/{id}/cancel", h.CancelLeaveRequest)
		})

		r.Get("/balance", h.GetBalance)

		// Report routes
		r.Route("/reports", func(r chi.Router) {
			r.Get("/compliance", h.ComplianceReport)
			r.Get("/daily", h.DailyReport)
			r.Get("/overtime", h.OvertimeReport)
		})

		// Employee routes
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Get("/{id}", h.GetEmployee)
			r.Put("/{id}", h.PutEmployee)
		})
	})

	return r
}
