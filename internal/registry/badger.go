// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	connKeyPrefix = "conn:"
	roomKeyPrefix = "room:"
)

// BadgerStore implements Store using BadgerDB for durable storage.
// Connection records persist across restarts, so viewers that reconnect
// quickly after a crash find their registry state intact.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// NewBadgerStore creates a new BadgerDB-backed connection store.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db, now: time.Now}
}

// OpenBadger opens a BadgerDB instance at path with logging disabled.
func OpenBadger(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", path, err)
	}
	return db, nil
}

func connKey(id string) []byte {
	return []byte(connKeyPrefix + id)
}

func roomMemberKey(roomKey, id string) []byte {
	return []byte(roomKeyPrefix + roomKey + ":" + id)
}

// Put inserts or overwrites a connection record.
// The room secondary index is maintained in the same transaction.
func (s *BadgerStore) Put(ctx context.Context, conn *Connection) error {
	data, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("marshal connection: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		// Drop the prior room mapping if the connection is moving rooms.
		if item, err := txn.Get(connKey(conn.ID)); err == nil {
			var prev Connection
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &prev)
			}); err == nil && prev.RoomKey != "" && prev.RoomKey != conn.RoomKey {
				if err := txn.Delete(roomMemberKey(prev.RoomKey, conn.ID)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("delete prior room mapping: %w", err)
				}
			}
		}

		if err := txn.Set(connKey(conn.ID), data); err != nil {
			return fmt.Errorf("set connection: %w", err)
		}

		if conn.RoomKey != "" {
			if err := txn.Set(roomMemberKey(conn.RoomKey, conn.ID), []byte(conn.ID)); err != nil {
				return fmt.Errorf("set room mapping: %w", err)
			}
		}

		return nil
	})
}

// Get retrieves a connection by ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (*Connection, error) {
	var conn Connection

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(connKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get connection: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conn)
		})
	})

	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Delete removes a connection by ID. Idempotent.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(connKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil // Already deleted
		}
		if err != nil {
			return fmt.Errorf("get connection: %w", err)
		}

		var conn Connection
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conn)
		}); err != nil {
			return fmt.Errorf("unmarshal connection: %w", err)
		}

		if err := txn.Delete(connKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete connection: %w", err)
		}

		if conn.RoomKey != "" {
			if err := txn.Delete(roomMemberKey(conn.RoomKey, id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("delete room mapping: %w", err)
			}
		}

		return nil
	})
}

// ListMembers returns the IDs of unexpired connections joined to roomKey.
func (s *BadgerStore) ListMembers(ctx context.Context, roomKey string) ([]string, error) {
	var ids []string
	now := s.now()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(roomKeyPrefix + roomKey + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var id string
			if err := it.Item().Value(func(val []byte) error {
				id = string(val)
				return nil
			}); err != nil {
				continue
			}

			item, err := txn.Get(connKey(id))
			if err != nil {
				continue // Record may have been deleted
			}

			var conn Connection
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &conn)
			}); err != nil {
				continue
			}

			if !conn.IsExpired(now) {
				ids = append(ids, id)
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	return ids, nil
}

// DeleteExpired physically removes all expired records.
func (s *BadgerStore) DeleteExpired(ctx context.Context) (int, error) {
	var expiredIDs []string
	now := s.now()

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(connKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var conn Connection
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &conn)
			}); err != nil {
				continue
			}

			if conn.IsExpired(now) {
				expiredIDs = append(expiredIDs, conn.ID)
			}
		}
		return nil
	})

	if err != nil {
		return 0, fmt.Errorf("scan connections: %w", err)
	}

	count := 0
	for _, id := range expiredIDs {
		if err := s.Delete(ctx, id); err != nil {
			continue
		}
		count++
	}
	return count, nil
}

// Count returns the total number of records, expired included.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	count := 0

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(connKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})

	return count, err
}
