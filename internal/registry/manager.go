// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
)

// DefaultTTL is the expiry horizon stamped on connection records.
const DefaultTTL = 24 * time.Hour

// Manager owns all writes to the connection store. The broadcast dispatcher
// and transport layer read through the store but mutate only through the
// manager, keeping a single-writer discipline over registry state.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager creates a connection lifecycle manager over store.
// A non-positive ttl falls back to DefaultTTL.
func NewManager(store Store, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Store returns the underlying store for read-side collaborators.
func (m *Manager) Store() Store {
	return m.store
}

// OnConnect registers a new connection with no room membership.
// Idempotent per ID: a repeated connect overwrites the prior record.
func (m *Manager) OnConnect(ctx context.Context, id string) error {
	now := m.now()
	conn := &Connection{
		ID:          id,
		ConnectedAt: now,
		ExpiresAt:   now.Add(m.ttl),
	}

	if err := m.store.Put(ctx, conn); err != nil {
		return fmt.Errorf("register connection %s: %w", id, err)
	}

	logging.Debug().
		Str("connection_id", id).
		Msg("Connection registered")
	return nil
}

// OnJoin places the connection into the room identified by roomKey.
// The connection must already exist; a join before connect is a protocol
// violation and returns ErrNotFound. A repeated join overwrites the prior
// membership and refreshes the expiry horizon.
func (m *Manager) OnJoin(ctx context.Context, id, roomKey string) error {
	conn, err := m.store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("join room %s for connection %s: %w", roomKey, id, err)
	}

	now := m.now()
	conn.RoomKey = roomKey
	conn.JoinedAt = now
	conn.ExpiresAt = now.Add(m.ttl)

	if err := m.store.Put(ctx, conn); err != nil {
		return fmt.Errorf("join room %s for connection %s: %w", roomKey, id, err)
	}

	metrics.RegistryRoomJoins.Inc()
	logging.Info().
		Str("connection_id", id).
		Str("room_key", roomKey).
		Msg("Connection joined room")
	return nil
}

// OnDisconnect removes the connection unconditionally. Idempotent: duplicate
// or out-of-order disconnect notifications are not errors.
func (m *Manager) OnDisconnect(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("remove connection %s: %w", id, err)
	}

	logging.Debug().
		Str("connection_id", id).
		Msg("Connection disconnected")
	return nil
}

// Evict removes the connection after a failed push. Identical in effect to
// OnDisconnect; distinguished because eviction means the server detected a
// dead channel rather than the client announcing departure.
func (m *Manager) Evict(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("evict connection %s: %w", id, err)
	}

	metrics.RecordEviction("push_failure")
	logging.Warn().
		Str("connection_id", id).
		Msg("Connection evicted after failed push")
	return nil
}
