// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package registry

import (
	"context"
	"errors"
	"time"
)

// Registry errors
var (
	// ErrNotFound is returned when a connection is not present in the store.
	ErrNotFound = errors.New("connection not found")
)

// Connection represents one live viewer channel.
// Absence from the store means the connection is not reachable.
type Connection struct {
	// ID is the opaque connection identifier assigned by the transport
	// layer at connect time. Immutable; primary key.
	ID string `json:"id"`

	// RoomKey is the device code the viewer has joined. Empty until the
	// first join. A connection belongs to at most one room; a later join
	// overwrites the membership.
	RoomKey string `json:"roomKey,omitempty"`

	// ConnectedAt is when the transport connection was established.
	ConnectedAt time.Time `json:"connectedAt"`

	// JoinedAt is when RoomKey was last assigned. Zero until the first join.
	JoinedAt time.Time `json:"joinedAt,omitempty"`

	// ExpiresAt is the absolute time after which the record is considered
	// stale and may be garbage-collected without an explicit disconnect.
	ExpiresAt time.Time `json:"expiresAt"`
}

// IsExpired reports whether the record is past its expiry horizon at now.
func (c *Connection) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Store defines the connection registry storage backend.
//
// Implementations must provide read-your-writes visibility: a ListMembers
// call issued after Put returns sees the written record. ListMembers treats
// expiry as a soft-delete predicate and never returns expired entries, even
// before DeleteExpired has physically removed them.
type Store interface {
	// Put inserts or overwrites a connection record.
	Put(ctx context.Context, conn *Connection) error

	// Get retrieves a connection by ID.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Connection, error)

	// Delete removes a connection by ID.
	// Does not return an error if the connection is already absent.
	Delete(ctx context.Context, id string) error

	// ListMembers returns the IDs of all unexpired connections whose
	// RoomKey equals roomKey. The result is an unordered set; an empty
	// result is the common case, not an error.
	ListMembers(ctx context.Context, roomKey string) ([]string, error)

	// DeleteExpired physically removes all expired records.
	// Returns the count of removed records.
	DeleteExpired(ctx context.Context) (int, error)

	// Count returns the total number of records, expired included.
	Count(ctx context.Context) (int, error)
}
