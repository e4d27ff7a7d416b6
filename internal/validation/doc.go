// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with custom validators and user-friendly error
// messages. It integrates with the application's API error format for consistent
// error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Comprehensive error translation to human-readable messages
//   - APIError conversion matching the application's error format
//   - Built-in validator support (email, latitude, longitude, e164, oneof)
//   - Custom device_code validator for provisioned device identities
//
// # Quick Start
//
//	type IngestRequest struct {
//	    DeviceCode string `validate:"required,device_code"`
//	    Lat        string `validate:"required,latitude"`
//	    Long       string `validate:"required,longitude"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req IngestRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//	}
//
// # Custom Validators
//
// device_code validates the public device identity used for room addressing.
// Device codes are provisioned as 4-16 uppercase alphanumeric characters:
//
//	DeviceCode string `validate:"required,device_code"`
//
// Coordinates arrive as strings on the wire and are validated with the
// built-in latitude and longitude validators, which accept both string and
// numeric fields:
//
//	Lat  string `validate:"required,latitude"`
//	Long string `validate:"required,longitude"`
//
// # Error Format
//
// Validation errors are aggregated into a single RequestValidationError that
// converts to the standard APIError envelope:
//
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "DeviceCode: DeviceCode is required; Lat: Lat must be a valid latitude (-90 to 90)",
//	    "details": {
//	        "fields": [
//	            {"field": "DeviceCode", "tag": "required", "message": "..."},
//	            {"field": "Lat", "tag": "latitude", "message": "..."}
//	        ]
//	    }
//	}
//
// All failing fields are reported in one response so clients can fix a
// malformed request in a single round trip.
//
// # Thread Safety
//
// GetValidator returns a singleton guarded by sync.Once. The validator caches
// struct metadata internally and is safe for concurrent use from handlers.
package validation
