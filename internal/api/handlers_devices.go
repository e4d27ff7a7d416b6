// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tracknest/tracknest/internal/database"
	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/validation"
)

// DeviceRequest is the payload for provisioning or updating a device.
type DeviceRequest struct {
	DeviceCode   string `json:"deviceCode" validate:"required,device_code"`
	IotSimNumber string `json:"iotSimNumber" validate:"required,max=20"`
	Name         string `json:"name" validate:"max=100"`
}

// CreateDevice handles POST /api/v1/devices. Provisioning is an upsert:
// posting an existing device code updates its SIM number and name.
func (h *Handler) CreateDevice(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	device := &models.Device{
		DeviceCode:   req.DeviceCode,
		IotSimNumber: req.IotSimNumber,
		Name:         req.Name,
	}
	if err := h.db.UpsertDevice(r.Context(), device); err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Info().Str("device_code", device.DeviceCode).Msg("Device provisioned")
	rw.Created(device)
}

// ListDevices handles GET /api/v1/devices.
func (h *Handler) ListDevices(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	devices, err := h.db.ListDevices(r.Context())
	if err != nil {
		rw.DatabaseError(err)
		return
	}
	if devices == nil {
		devices = []models.Device{}
	}

	rw.SuccessWithPagination(devices, &PaginationMeta{Count: len(devices)})
}

// GetDevice handles GET /api/v1/devices/{code}.
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	deviceCode := chi.URLParam(r, "code")

	device, err := h.db.GetDeviceByCode(r.Context(), deviceCode)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("device is not provisioned: " + deviceCode)
			return
		}
		rw.DatabaseError(err)
		return
	}

	rw.Success(device)
}

// DeleteDevice handles DELETE /api/v1/devices/{code}. Location history
// for the device is retained.
func (h *Handler) DeleteDevice(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	deviceCode := chi.URLParam(r, "code")

	if err := h.db.DeleteDevice(r.Context(), deviceCode); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			rw.NotFound("device is not provisioned: " + deviceCode)
			return
		}
		rw.DatabaseError(err)
		return
	}

	logging.Info().Str("device_code", deviceCode).Msg("Device deleted")
	rw.NoContent()
}
