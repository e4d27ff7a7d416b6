// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationFix is a single GPS report from a device. Coordinates and
// telemetry arrive as strings exactly as the device firmware sends them;
// the server stores and forwards them without numeric reinterpretation.
//
// A fix is immutable once created. TrackedAt is the device-side capture
// time and travels with every broadcast payload so late or out-of-order
// arrival is resolvable client-side.
type LocationFix struct {
	ID           uuid.UUID `json:"id"`
	DeviceCode   string    `json:"deviceCode" validate:"required,device_code"`
	IotSimNumber string    `json:"iotSimNumber" validate:"required,max=20"`
	Lat          string    `json:"lat" validate:"required,latitude"`
	Long         string    `json:"long" validate:"required,longitude"`

	// Optional telemetry, forwarded verbatim when present.
	Level          string `json:"level,omitempty"`
	Altitude       string `json:"altitude,omitempty"`
	Speed          string `json:"speed,omitempty"`
	Compress       string `json:"compress,omitempty"`
	Weight         string `json:"weight,omitempty"`
	NoOfSatellites string `json:"noOfSatellites,omitempty"`

	TrackedAt time.Time `json:"trackedAt" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

// LocationData is the telemetry body of a broadcast payload. It mirrors
// LocationFix minus the identity fields, which live on the envelope.
type LocationData struct {
	Lat            string    `json:"lat"`
	Long           string    `json:"long"`
	Level          string    `json:"level,omitempty"`
	Altitude       string    `json:"altitude,omitempty"`
	Speed          string    `json:"speed,omitempty"`
	Compress       string    `json:"compress,omitempty"`
	Weight         string    `json:"weight,omitempty"`
	NoOfSatellites string    `json:"noOfSatellites,omitempty"`
	TrackedAt      time.Time `json:"trackedAt"`
}

// Data extracts the broadcast telemetry body from a fix.
func (f *LocationFix) Data() LocationData {
	return LocationData{
		Lat:            f.Lat,
		Long:           f.Long,
		Level:          f.Level,
		Altitude:       f.Altitude,
		Speed:          f.Speed,
		Compress:       f.Compress,
		Weight:         f.Weight,
		NoOfSatellites: f.NoOfSatellites,
		TrackedAt:      f.TrackedAt,
	}
}
