// Accountd - Internal Account Management and Payroll Service
// Copyright 2026 Acme Corp
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/acmecorp/accountd

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/acmecorp/accountd/internal/auth"
	"github.com/acmecorp/accountd/internal/authz"
	"github.com/acmecorp/accountd/internal/middleware"
)

// RouterConfig tunes the shared middleware stack.
type RouterConfig struct {
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow time.Duration
}

// DefaultRouterConfig returns permissive development defaults.
func DefaultRouterConfig() *RouterConfig {
	return &RouterConfig{
		CORSOrigins:     []string{"*"},
		RateLimitReqs:   100,
		RateLimitWindow: time.Minute,
	}
}

// NewRouter assembles the full route tree: public auth endpoints,
// authenticated business endpoints behind the access matrix, and the
// operational endpoints.
func NewRouter(h *Handlers, authn *auth.Middleware, authzMW *authz.Middleware, cfg *RouterConfig) http.Handler {
	if cfg == nil {
		cfg = DefaultRouterConfig()
	}

	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Public endpoints. Signup and token issuing carry the tightest
	// rate limit since both accept credentials from anyone.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.Limit(cfg.RateLimitReqs, cfg.RateLimitWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Use(middleware.PrometheusMetrics)

		r.Post("/signup", h.Signup)
		r.Post("/token", h.Token)

		// Password change needs an authenticated caller but no specific
		// role.
		r.With(authn.Handler).Post("/changepass", h.ChangePassword)
	})

	// Role-scoped endpoints: authentication, then the access matrix.
	protected := func(r chi.Router) {
		r.Use(httprate.Limit(cfg.RateLimitReqs, cfg.RateLimitWindow, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Use(middleware.PrometheusMetrics)
		r.Use(authn.Handler)
		r.Use(authzMW.Handler)
	}

	r.Route("/api/empl", func(r chi.Router) {
		protected(r)
		r.Get("/user", h.Profile)
		r.Get("/payment", h.Payment)
	})

	r.Route("/api/acct", func(r chi.Router) {
		protected(r)
		r.Post("/payments", h.UploadPayments)
		r.Put("/payments", h.UpdatePayment)
	})

	r.Route("/api/admin", func(r chi.Router) {
		protected(r)
		r.Get("/user", h.ListUsers)
		r.Delete("/user/{email}", h.DeleteUser)
		r.Put("/user/role", h.ChangeRole)
		r.Put("/user/access", h.ChangeAccess)
	})

	r.Route("/api/security", func(r chi.Router) {
		protected(r)
		r.Get("/events", h.SecurityEvents)
	})

	// Operational endpoints, unauthenticated.
	r.Get("/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
