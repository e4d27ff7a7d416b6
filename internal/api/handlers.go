// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tracknest/tracknest/internal/auth"
	"github.com/tracknest/tracknest/internal/broadcast"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/database"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/registry"
	ws "github.com/tracknest/tracknest/internal/websocket"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, ingest throttle (this file)
//   - handlers_auth.go: Login and session endpoints
//   - handlers_devices.go: Device provisioning endpoints
//   - handlers_locations.go: Fix ingest and location history endpoints
//   - handlers_health.go: Health and monitoring endpoints
//   - handlers_websocket.go: WebSocket upgrade endpoint
type Handler struct {
	db         *database.DB
	config     *config.Config
	jwtManager *auth.JWTManager
	hub        *ws.Hub
	dispatcher *broadcast.Dispatcher
	regManager *registry.Manager
	relay      *ws.NATSRelay
	startTime  time.Time

	// Per-device ingest throttles. Devices report continuously, so
	// limiters are never swept; the map is bounded by the device fleet.
	ingestMu       sync.Mutex
	ingestLimiters map[string]*rate.Limiter
}

// NewHandler creates a new API handler with all required dependencies.
func NewHandler(db *database.DB, cfg *config.Config, jwtManager *auth.JWTManager, hub *ws.Hub, dispatcher *broadcast.Dispatcher, regManager *registry.Manager) *Handler {
	return &Handler{
		db:             db,
		config:         cfg,
		jwtManager:     jwtManager,
		hub:            hub,
		dispatcher:     dispatcher,
		regManager:     regManager,
		startTime:      time.Now(),
		ingestLimiters: make(map[string]*rate.Limiter),
	}
}

// SetRelay attaches the optional NATS relay. Called after construction
// when the relay is enabled, since it requires a reachable broker.
func (h *Handler) SetRelay(relay *ws.NATSRelay) {
	h.relay = relay
}

// relayFix republishes a fix to NATS when the relay is configured.
func (h *Handler) relayFix(fix *models.LocationFix) {
	if h.relay != nil {
		h.relay.Relay(fix)
	}
}

// allowIngest reports whether the device is within its report rate.
func (h *Handler) allowIngest(deviceCode string) bool {
	h.ingestMu.Lock()
	limiter, ok := h.ingestLimiters[deviceCode]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(h.config.Security.IngestRate), h.config.Security.IngestBurst)
		h.ingestLimiters[deviceCode] = limiter
	}
	h.ingestMu.Unlock()

	return limiter.Allow()
}
