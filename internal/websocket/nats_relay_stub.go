// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

//go:build !nats

package websocket

import (
	"fmt"

	"github.com/tracknest/tracknest/internal/models"
)

// NATSRelay is a stub for non-NATS builds.
type NATSRelay struct{}

// NewNATSRelay returns an error in non-NATS builds.
func NewNATSRelay(_, _ string) (*NATSRelay, error) {
	return nil, fmt.Errorf("NATS support not enabled (build with -tags nats)")
}

// Relay is a no-op stub.
func (r *NATSRelay) Relay(_ *models.LocationFix) {}

// Close is a no-op stub.
func (r *NATSRelay) Close() {}
