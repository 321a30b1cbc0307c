package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"workstack/backend/internal/server/middleware"
)

// Deps carries the route mounts and middleware the router wires together.
// Route funcs are pre-built closures so handler packages stay decoupled
// from the router.
type Deps struct {
	// AuthRoutes mounts signup/login/refresh/logout under /auth (public,
	// rate-limited).
	AuthRoutes func(chi.Router)
	// UserRoutes mounts the user endpoints under /users (authenticated).
	UserRoutes func(chi.Router)
	// OrgRoutes mounts the organization tree under /organizations
	// (authenticated), including nested teams, lists, and audit logs.
	OrgRoutes func(chi.Router)

	// Auth is the identity middleware guarding protected routes.
	Auth func(http.Handler) http.Handler
	// Audit records mutations against org resources. Optional.
	Audit func(http.Handler) http.Handler
	// Metrics records per-request metrics. Optional.
	Metrics func(http.Handler) http.Handler
	// Tracing opens a span per request. Optional.
	Tracing func(http.Handler) http.Handler
	// RateLimit throttles the /auth group. Optional.
	RateLimit func(http.Handler) http.Handler

	// HealthHandler serves GET /health (public). Optional.
	HealthHandler http.Handler
	// MetricsHandler serves GET /metrics (public). Optional.
	MetricsHandler http.Handler

	// CORSOrigins enables CORS for the listed origins. Empty disables it.
	CORSOrigins []string
}

// NewRouter assembles the HTTP routing tree: public health, metrics, and
// auth endpoints, and the API behind the auth middleware.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	if d.Tracing != nil {
		r.Use(d.Tracing)
	}
	if d.Metrics != nil {
		r.Use(d.Metrics)
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if d.HealthHandler != nil {
		r.Method(http.MethodGet, "/health", d.HealthHandler)
	}
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	if d.AuthRoutes != nil {
		r.Route("/auth", func(r chi.Router) {
			if d.RateLimit != nil {
				r.Use(d.RateLimit)
			}
			d.AuthRoutes(r)
		})
	}

	r.Group(func(r chi.Router) {
		if d.Auth != nil {
			r.Use(d.Auth)
		}
		if d.Audit != nil {
			r.Use(d.Audit)
		}
		if d.UserRoutes != nil {
			r.Route("/users", d.UserRoutes)
		}
		if d.OrgRoutes != nil {
			r.Route("/organizations", d.OrgRoutes)
		}
	})

	return r
}
