// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package database

import (
	"context"
	"fmt"
)

// initSchema creates all tables and indexes if they do not exist.
func (db *DB) initSchema(ctx context.Context) error {
	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the table creation SQL statements.
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id UUID PRIMARY KEY,
			device_code TEXT NOT NULL UNIQUE,
			iot_sim_number TEXT NOT NULL,
			name TEXT,
			owner_id UUID,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		// Telemetry columns stay TEXT: values are stored and forwarded
		// exactly as the device firmware sent them.
		`CREATE TABLE IF NOT EXISTS location_fixes (
			id UUID PRIMARY KEY,
			device_code TEXT NOT NULL,
			iot_sim_number TEXT NOT NULL,
			lat TEXT NOT NULL,
			long TEXT NOT NULL,
			level TEXT,
			altitude TEXT,
			speed TEXT,
			compress TEXT,
			weight TEXT,
			no_of_satellites TEXT,
			tracked_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_fixes_device_tracked
			ON location_fixes(device_code, tracked_at)`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			phone TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
	}
}
