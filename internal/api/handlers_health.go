// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptimeSeconds"`
	Database      string `json:"database"`
	Connections   int    `json:"connections"`
	TrackedFixes  int64  `json:"trackedFixes"`
}

// Health handles GET /health. Reports degraded (503) when the
// database is unreachable; the websocket layer has no failure mode
// separate from the process itself.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := HealthStatus{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Database:      "ok",
		Connections:   h.hub.GetClientCount(),
	}

	if err := h.db.Ping(r.Context()); err != nil {
		status.Status = "degraded"
		status.Database = "unreachable"
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable,
			"database unreachable", status)
		return
	}

	if count, err := h.db.CountLocationFixes(r.Context()); err == nil {
		status.TrackedFixes = count
	}

	rw.Success(status)
}

// HealthLive handles GET /health/live. Always 200 while the process
// can serve requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady handles GET /health/ready. Ready means the database
// answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.db.Ping(r.Context()); err != nil {
		rw.ServiceUnavailable("database unreachable")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
