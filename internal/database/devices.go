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
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/models"
)

// UpsertDevice inserts a device or, when the device code already exists,
// updates the mutable fields (SIM number, name, owner). The device code
// itself and the original creation time never change.
func (db *DB) UpsertDevice(ctx context.Context, device *models.Device) error {
	if device.ID == uuid.Nil {
		device.ID = uuid.New()
	}
	now := time.Now().UTC()
	if device.CreatedAt.IsZero() {
		device.CreatedAt = now
	}
	device.UpdatedAt = now

	query := `INSERT INTO devices (
		id, device_code, iot_sim_number, name, owner_id, created_at, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (device_code) DO UPDATE SET
		iot_sim_number = EXCLUDED.iot_sim_number,
		name = EXCLUDED.name,
		owner_id = EXCLUDED.owner_id,
		updated_at = EXCLUDED.updated_at`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		device.ID, device.DeviceCode, device.IotSimNumber,
		device.Name, device.OwnerID, device.CreatedAt, device.UpdatedAt)
	metrics.RecordDBQuery("upsert", "devices", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to upsert device %s: %w", device.DeviceCode, err)
	}
	return nil
}

// GetDeviceByCode returns the device with the given device code, or
// ErrNotFound when no such device is provisioned.
func (db *DB) GetDeviceByCode(ctx context.Context, deviceCode string) (*models.Device, error) {
	query := `SELECT id, device_code, iot_sim_number, name, owner_id, created_at, updated_at
		FROM devices WHERE device_code = ?`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, deviceCode)
	device, err := scanDevice(row)
	metrics.RecordDBQuery("select", "devices", time.Since(start), err)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device %s: %w", deviceCode, err)
	}
	return device, nil
}

// ListDevices returns all provisioned devices ordered by device code.
func (db *DB) ListDevices(ctx context.Context) ([]models.Device, error) {
	query := `SELECT id, device_code, iot_sim_number, name, owner_id, created_at, updated_at
		FROM devices ORDER BY device_code`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "devices", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var devices []models.Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device row: %w", err)
		}
		devices = append(devices, *device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device rows: %w", err)
	}
	return devices, nil
}

// DeleteDevice removes a device by code. Historical location fixes are
// retained. Returns ErrNotFound when the code is unknown.
func (db *DB) DeleteDevice(ctx context.Context, deviceCode string) error {
	query := `DELETE FROM devices WHERE device_code = ?`

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, query, deviceCode)
	metrics.RecordDBQuery("delete", "devices", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete device %s: %w", deviceCode, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDevice(s scanner) (*models.Device, error) {
	var (
		device  models.Device
		name    sql.NullString
		ownerID sql.NullString
	)
	err := s.Scan(&device.ID, &device.DeviceCode, &device.IotSimNumber,
		&name, &ownerID, &device.CreatedAt, &device.UpdatedAt)
	if err != nil {
		return nil, err
	}
	device.Name = name.String
	if ownerID.Valid {
		if parsed, err := uuid.Parse(ownerID.String); err == nil {
			device.OwnerID = parsed
		}
	}
	return &device, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint")
}
