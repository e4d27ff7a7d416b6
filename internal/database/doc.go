// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

// Package database provides DuckDB-backed persistence for devices,
// location fixes, and user accounts.
//
// DuckDB runs embedded; New opens (or creates) the database file with
// extension auto-install disabled and a small connection pool sized for
// single-process access. NewInMemory opens a throwaway instance for
// tests.
//
// Location fixes are append-only. Coordinates and telemetry are stored
// as TEXT exactly as received from device firmware; the database never
// reinterprets them numerically. Queries record duration and error
// counters through the metrics package.
//
// Row lookups return ErrNotFound for missing records and ErrDuplicate
// for unique constraint violations, letting handlers map storage
// failures to API status codes without string matching.
package database
