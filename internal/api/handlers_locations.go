// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tracknest/tracknest/internal/database"
	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/validation"
)

// IngestRequest is the payload devices POST to report a GPS fix.
// Coordinates and telemetry are strings straight from the firmware.
type IngestRequest struct {
	DeviceCode   string `json:"deviceCode" validate:"required,device_code"`
	IotSimNumber string `json:"iotSimNumber" validate:"required,max=20"`
	Lat          string `json:"lat" validate:"required,latitude"`
	Long         string `json:"long" validate:"required,longitude"`

	Level          string `json:"level,omitempty"`
	Altitude       string `json:"altitude,omitempty"`
	Speed          string `json:"speed,omitempty"`
	Compress       string `json:"compress,omitempty"`
	Weight         string `json:"weight,omitempty"`
	NoOfSatellites string `json:"noOfSatellites,omitempty"`

	// TrackedAt is the device-side capture time. Defaults to the server
	// receive time when omitted.
	TrackedAt time.Time `json:"trackedAt"`
}

// IngestResponse reports the stored fix and how many watchers received it.
type IngestResponse struct {
	Fix       *models.LocationFix `json:"fix"`
	Delivered int                 `json:"delivered"`
}

// IngestLocation handles POST /api/v1/locations.
//
// The fix is validated, persisted, and then broadcast to every watcher
// joined to the device's room. Broadcast failures never fail the write:
// once the fix is stored the response is 201 regardless of delivery.
func (h *Handler) IngestLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.LocationFixesRejected.WithLabelValues("validation").Inc()
		rw.BadRequest("invalid JSON body")
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.LocationFixesRejected.WithLabelValues("validation").Inc()
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if _, err := h.db.GetDeviceByCode(r.Context(), req.DeviceCode); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			metrics.LocationFixesRejected.WithLabelValues("unknown_device").Inc()
			rw.NotFound("device is not provisioned: " + req.DeviceCode)
			return
		}
		rw.DatabaseError(err)
		return
	}

	if !h.allowIngest(req.DeviceCode) {
		metrics.LocationFixesRejected.WithLabelValues("rate_limited").Inc()
		rw.TooManyRequests("device is reporting too fast")
		return
	}

	fix := &models.LocationFix{
		DeviceCode:     req.DeviceCode,
		IotSimNumber:   req.IotSimNumber,
		Lat:            req.Lat,
		Long:           req.Long,
		Level:          req.Level,
		Altitude:       req.Altitude,
		Speed:          req.Speed,
		Compress:       req.Compress,
		Weight:         req.Weight,
		NoOfSatellites: req.NoOfSatellites,
		TrackedAt:      req.TrackedAt,
	}
	if fix.TrackedAt.IsZero() {
		fix.TrackedAt = time.Now().UTC()
	}

	if err := h.db.InsertLocationFix(r.Context(), fix); err != nil {
		rw.DatabaseError(err)
		return
	}
	metrics.LocationFixesIngested.Inc()

	// Best-effort fanout. A failed publish is logged, never surfaced
	// to the reporting device.
	report, err := h.dispatcher.Publish(r.Context(), fix.DeviceCode, fix)
	if err != nil {
		logging.Error().Err(err).
			Str("device_code", fix.DeviceCode).
			Msg("Broadcast publish failed after persisting fix")
	}

	h.relayFix(fix)

	rw.Created(IngestResponse{Fix: fix, Delivered: report.Delivered})
}

// ListDeviceLocations handles GET /api/v1/devices/{code}/locations.
// Supports from/to (RFC3339) and limit query parameters.
func (h *Handler) ListDeviceLocations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	deviceCode := chi.URLParam(r, "code")

	filter, ok := parseFixFilter(rw, r)
	if !ok {
		return
	}

	if _, err := h.db.GetDeviceByCode(r.Context(), deviceCode); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("device is not provisioned: " + deviceCode)
			return
		}
		rw.DatabaseError(err)
		return
	}

	fixes, err := h.db.ListLocationFixes(r.Context(), deviceCode, filter)
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if fixes == nil {
		fixes = []models.LocationFix{}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	rw.SuccessWithPagination(fixes, &PaginationMeta{
		Count:   len(fixes),
		Limit:   limit,
		HasMore: len(fixes) == limit,
	})
}

// LatestDeviceLocation handles GET /api/v1/devices/{code}/locations/latest.
func (h *Handler) LatestDeviceLocation(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	deviceCode := chi.URLParam(r, "code")

	fix, err := h.db.GetLatestFix(r.Context(), deviceCode)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("no location fixes recorded for device: " + deviceCode)
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(fix)
}

// parseFixFilter extracts from/to/limit query parameters. On a malformed
// parameter it writes a 400 response and reports ok=false.
func parseFixFilter(rw *ResponseWriter, r *http.Request) (database.FixFilter, bool) {
	var filter database.FixFilter

	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rw.BadRequest("invalid 'from' timestamp, expected RFC3339")
			return filter, false
		}
		filter.From = t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			rw.BadRequest("invalid 'to' timestamp, expected RFC3339")
			return filter, false
		}
		filter.To = t
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			rw.BadRequest("invalid 'limit', expected a positive integer")
			return filter, false
		}
		filter.Limit = n
	}

	return filter, true
}
