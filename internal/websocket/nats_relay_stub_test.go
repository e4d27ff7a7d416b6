// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

//go:build !nats

package websocket

import (
	"strings"
	"testing"
)

func TestNATSRelayStub(t *testing.T) {
	relay, err := NewNATSRelay("nats://localhost:4222", "locations")
	if err == nil {
		t.Fatal("expected error from stub NewNATSRelay")
	}
	if !strings.Contains(err.Error(), "-tags nats") {
		t.Errorf("expected build-tag hint in error, got: %v", err)
	}
	if relay != nil {
		t.Error("expected nil relay from stub")
	}

	// No-op methods must be safe on the nil relay.
	relay.Relay(nil)
	relay.Close()
}
