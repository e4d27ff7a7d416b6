// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/models"
)

// FixFilter narrows a location history query. Zero-value fields are
// ignored. Limit defaults to 100 and is capped at 1000.
type FixFilter struct {
	From  time.Time
	To    time.Time
	Limit int
}

const (
	defaultFixLimit = 100
	maxFixLimit     = 1000
)

// InsertLocationFix persists a GPS fix. The fix is immutable once
// written; there is no update path.
func (db *DB) InsertLocationFix(ctx context.Context, fix *models.LocationFix) error {
	if fix.ID == uuid.Nil {
		fix.ID = uuid.New()
	}
	if fix.CreatedAt.IsZero() {
		fix.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO location_fixes (
		id, device_code, iot_sim_number, lat, long,
		level, altitude, speed, compress, weight, no_of_satellites,
		tracked_at, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		fix.ID, fix.DeviceCode, fix.IotSimNumber, fix.Lat, fix.Long,
		nullable(fix.Level), nullable(fix.Altitude), nullable(fix.Speed),
		nullable(fix.Compress), nullable(fix.Weight), nullable(fix.NoOfSatellites),
		fix.TrackedAt, fix.CreatedAt)
	metrics.RecordDBQuery("insert", "location_fixes", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert location fix for %s: %w", fix.DeviceCode, err)
	}
	return nil
}

// ListLocationFixes returns fixes for a device ordered newest first.
func (db *DB) ListLocationFixes(ctx context.Context, deviceCode string, filter FixFilter) ([]models.LocationFix, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultFixLimit
	}
	if limit > maxFixLimit {
		limit = maxFixLimit
	}

	query := `SELECT id, device_code, iot_sim_number, lat, long,
		level, altitude, speed, compress, weight, no_of_satellites,
		tracked_at, created_at
		FROM location_fixes WHERE device_code = ?`
	args := []interface{}{deviceCode}

	if !filter.From.IsZero() {
		query += ` AND tracked_at >= ?`
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		query += ` AND tracked_at <= ?`
		args = append(args, filter.To)
	}
	query += ` ORDER BY tracked_at DESC LIMIT ?`
	args = append(args, limit)

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "location_fixes", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list location fixes for %s: %w", deviceCode, err)
	}
	defer func() { _ = rows.Close() }()

	var fixes []models.LocationFix
	for rows.Next() {
		fix, err := scanFix(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location fix row: %w", err)
		}
		fixes = append(fixes, *fix)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate location fix rows: %w", err)
	}
	return fixes, nil
}

// GetLatestFix returns the most recent fix for a device, or ErrNotFound
// when the device has never reported.
func (db *DB) GetLatestFix(ctx context.Context, deviceCode string) (*models.LocationFix, error) {
	query := `SELECT id, device_code, iot_sim_number, lat, long,
		level, altitude, speed, compress, weight, no_of_satellites,
		tracked_at, created_at
		FROM location_fixes WHERE device_code = ?
		ORDER BY tracked_at DESC LIMIT 1`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, deviceCode)
	fix, err := scanFix(row)
	metrics.RecordDBQuery("select", "location_fixes", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get latest fix for %s: %w", deviceCode, err)
	}
	return fix, nil
}

// CountLocationFixes returns the total number of stored fixes.
func (db *DB) CountLocationFixes(ctx context.Context) (int64, error) {
	start := time.Now()
	var count int64
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM location_fixes`).Scan(&count)
	metrics.RecordDBQuery("select", "location_fixes", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to count location fixes: %w", err)
	}
	return count, nil
}

func scanFix(s scanner) (*models.LocationFix, error) {
	var (
		fix                                             models.LocationFix
		level, altitude, speed, compress, weight, nSats sql.NullString
	)
	err := s.Scan(&fix.ID, &fix.DeviceCode, &fix.IotSimNumber, &fix.Lat, &fix.Long,
		&level, &altitude, &speed, &compress, &weight, &nSats,
		&fix.TrackedAt, &fix.CreatedAt)
	if err != nil {
		return nil, err
	}
	fix.Level = level.String
	fix.Altitude = altitude.String
	fix.Speed = speed.String
	fix.Compress = compress.String
	fix.Weight = weight.String
	fix.NoOfSatellites = nSats.String
	return &fix, nil
}

// nullable maps an empty telemetry string to SQL NULL.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
