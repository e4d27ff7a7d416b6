// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tracknest/tracknest/internal/auth"
	"github.com/tracknest/tracknest/internal/middleware"
	"github.com/tracknest/tracknest/internal/models"
)

// Router wires handlers, auth middleware, and the Chi middleware stack.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from its dependencies.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMw *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		middleware:    authMiddleware,
		chiMiddleware: chiMw,
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the auth and metrics middleware
// can sit in r.Use chains.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(chiMiddleware(router.middleware.SecurityHeaders))

	// Health endpoints get a permissive rate limit so monitoring
	// can poll aggressively.
	r.Route("/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Prometheus scrape endpoint.
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Authentication endpoints. Login carries the strictest limit to
	// slow brute forcing.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())

		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
		r.Post("/logout", router.handler.Logout)
		r.Get("/me", router.middleware.Authenticate(router.handler.Me))
	})

	// Fix ingest. Devices authenticate by device code, not JWT; the
	// endpoint is guarded by the API rate limit plus the per-device
	// throttle inside the handler.
	r.Route("/api/v1/locations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/", router.handler.IngestLocation)
	})

	// Device management and history. All reads require a viewer token,
	// writes require admin.
	r.Route("/api/v1/devices", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", router.middleware.Authenticate(router.handler.ListDevices))
		r.Post("/", router.middleware.RequireRole(models.RoleAdmin, router.handler.CreateDevice))
		r.Get("/{code}", router.middleware.Authenticate(router.handler.GetDevice))
		r.Delete("/{code}", router.middleware.RequireRole(models.RoleAdmin, router.handler.DeleteDevice))
		r.Get("/{code}/locations", router.middleware.Authenticate(router.handler.ListDeviceLocations))
		r.Get("/{code}/locations/latest", router.middleware.Authenticate(router.handler.LatestDeviceLocation))
	})

	// WebSocket upgrade for live location watching.
	r.Get("/ws", router.middleware.Authenticate(router.handler.WebSocket))

	return r
}
