// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package api provides the HTTP surface of Tracknest: fix ingest, device
provisioning, location history, authentication, health, metrics, and the
WebSocket upgrade for live watching.

Routing uses Chi with the ecosystem middleware stack (go-chi/cors for
CORS, go-chi/httprate for per-IP rate limits) plus the in-house request
ID and Prometheus middleware. Every response uses the APIResponse
envelope with success/data/error/meta fields.

Endpoints:

	POST /api/v1/locations                       device fix ingest
	GET  /api/v1/devices                         list devices
	POST /api/v1/devices                         provision a device (admin)
	GET  /api/v1/devices/{code}                  device details
	DELETE /api/v1/devices/{code}                remove a device (admin)
	GET  /api/v1/devices/{code}/locations        fix history
	GET  /api/v1/devices/{code}/locations/latest last known position
	POST /api/v1/auth/login                      issue JWT
	POST /api/v1/auth/logout                     clear token cookie
	GET  /api/v1/auth/me                         authenticated claims
	GET  /ws                                     WebSocket upgrade
	GET  /health, /health/live, /health/ready    health probes
	GET  /metrics                                Prometheus scrape

The ingest path is the hot path: validate, persist, then broadcast to
the device's room. Broadcast failures are logged and recorded in
metrics but never fail the write; the device gets 201 once the fix is
stored. Each device also has an in-process token bucket throttle
(INGEST_RATE / INGEST_BURST) independent of the per-IP API limit.
*/
package api
