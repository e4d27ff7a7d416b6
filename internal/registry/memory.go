// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package registry

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory implementation of Store.
// Suitable for single-process deployments and testing. For durability
// across restarts, use BadgerStore.
type MemoryStore struct {
	mu    sync.RWMutex
	conns map[string]*Connection
	rooms map[string]map[string]struct{}
	now   func() time.Time
}

// NewMemoryStore creates a new in-memory connection store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conns: make(map[string]*Connection),
		rooms: make(map[string]map[string]struct{}),
		now:   time.Now,
	}
}

// Put inserts or overwrites a connection record.
func (s *MemoryStore) Put(ctx context.Context, conn *Connection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.conns[conn.ID]; ok && prev.RoomKey != "" && prev.RoomKey != conn.RoomKey {
		s.removeFromRoom(prev.RoomKey, conn.ID)
	}

	stored := *conn
	s.conns[conn.ID] = &stored

	if conn.RoomKey != "" {
		members, ok := s.rooms[conn.RoomKey]
		if !ok {
			members = make(map[string]struct{})
			s.rooms[conn.RoomKey] = members
		}
		members[conn.ID] = struct{}{}
	}

	return nil
}

// Get retrieves a connection by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil, ErrNotFound
	}

	// Return a copy to prevent external modifications
	c := *conn
	return &c, nil
}

// Delete removes a connection by ID. Idempotent.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil
	}

	if conn.RoomKey != "" {
		s.removeFromRoom(conn.RoomKey, id)
	}
	delete(s.conns, id)
	return nil
}

// ListMembers returns the IDs of unexpired connections joined to roomKey.
func (s *MemoryStore) ListMembers(ctx context.Context, roomKey string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	members, ok := s.rooms[roomKey]
	if !ok {
		return nil, nil
	}

	now := s.now()
	ids := make([]string, 0, len(members))
	for id := range members {
		conn, ok := s.conns[id]
		if !ok || conn.IsExpired(now) {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// DeleteExpired physically removes all expired records.
func (s *MemoryStore) DeleteExpired(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	count := 0
	for id, conn := range s.conns {
		if !conn.IsExpired(now) {
			continue
		}
		if conn.RoomKey != "" {
			s.removeFromRoom(conn.RoomKey, id)
		}
		delete(s.conns, id)
		count++
	}
	return count, nil
}

// Count returns the total number of records, expired included.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns), nil
}

// removeFromRoom drops id from the room index. Caller holds the write lock.
func (s *MemoryStore) removeFromRoom(roomKey, id string) {
	members, ok := s.rooms[roomKey]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(s.rooms, roomKey)
	}
}
