// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Admins may provision devices; viewers may only watch them.
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// User is an operator or viewer account. PasswordHash is a bcrypt hash
// and never serializes into API responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username" validate:"required,min=3,max=50"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role" validate:"oneof=admin viewer"`
	Phone        string    `json:"phone,omitempty" validate:"omitempty,e164"`
	CreatedAt    time.Time `json:"createdAt"`
}
