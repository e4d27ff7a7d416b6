// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package registry tracks live viewer connections and their room membership.

Every WebSocket viewer is represented by a Connection record keyed by an
opaque connection ID. A viewer that has sent a join request additionally
carries a RoomKey, the device code whose location updates it wants to
receive. A connection belongs to at most one room; joining another room
overwrites the previous membership. There is no leave-room operation.

Absence is the disconnect signal: a connection not present in the store is
unreachable by definition. Records carry a fixed expiry horizon (24 hours by
default) so that connections whose disconnect notification was lost cannot
accumulate forever. ListMembers treats expiry as a soft-delete predicate and
never returns stale entries; the Sweeper physically removes them in the
background.

# Single-Writer Discipline

All mutations flow through Manager:

  - OnConnect registers a connection with no room (idempotent).
  - OnJoin sets the room; requires a prior OnConnect, otherwise ErrNotFound.
  - OnDisconnect removes the record; idempotent, absence is not an error.
  - Evict has the same effect as OnDisconnect but is invoked by the
    broadcast dispatcher when a push proves the channel dead, and is
    reported separately in logs and metrics.

Readers (the dispatcher resolving room membership) go through Store
directly but never write, so write-write races cannot occur.

# Backends

Two Store implementations are provided:

  - MemoryStore: mutex-guarded map with a room secondary index. The default
    for single-process deployments.
  - BadgerStore: BadgerDB-backed with conn: and room: key prefixes, for
    registry state that survives restarts.

Both provide read-your-writes visibility: a membership query issued after a
join sees the new member.
*/
package registry
