// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

// Package models defines the core data structures shared across the
// application: devices, GPS location fixes, and users.
//
// All types in this package are plain data carriers. Location fixes are
// immutable once created; the broadcast subsystem serializes and forwards
// them but never mutates them.
package models
