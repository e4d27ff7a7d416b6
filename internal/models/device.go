// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package models

import (
	"time"

	"github.com/google/uuid"
)

// Device is a provisioned GPS tracker. DeviceCode is the public identity
// used for room addressing; IotSimNumber identifies the SIM the device
// reports over.
type Device struct {
	ID           uuid.UUID `json:"id"`
	DeviceCode   string    `json:"deviceCode" validate:"required,device_code"`
	IotSimNumber string    `json:"iotSimNumber" validate:"required,max=20"`
	Name         string    `json:"name" validate:"max=100"`
	OwnerID      uuid.UUID `json:"ownerId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
