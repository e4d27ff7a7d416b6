// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

//go:build nats

package websocket

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/models"
)

// NATSRelay republishes ingested location fixes to NATS so external
// consumers can follow a device without holding a websocket connection.
// Subjects are <prefix>.<deviceCode>.
type NATSRelay struct {
	conn   *nats.Conn
	prefix string
}

// NewNATSRelay connects to the NATS server at url.
func NewNATSRelay(url, subjectPrefix string) (*NATSRelay, error) {
	if subjectPrefix == "" {
		subjectPrefix = "locations"
	}

	conn, err := nats.Connect(url,
		nats.Name("tracknest-relay"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", url, err)
	}

	logging.Info().
		Str("url", url).
		Str("subject_prefix", subjectPrefix).
		Msg("NATS relay connected")

	return &NATSRelay{
		conn:   conn,
		prefix: subjectPrefix,
	}, nil
}

// Relay publishes the fix to <prefix>.<deviceCode>. Failures are logged and
// counted but never propagate; the relay is strictly best-effort and must
// not affect the ingest path.
func (r *NATSRelay) Relay(fix *models.LocationFix) {
	payload, err := json.Marshal(fix)
	if err != nil {
		logging.Error().Err(err).Msg("failed to serialize fix for NATS relay")
		return
	}

	subject := r.prefix + "." + fix.DeviceCode
	if err := r.conn.Publish(subject, payload); err != nil {
		metrics.NATSPublishErrors.Inc()
		logging.Warn().
			Err(err).
			Str("subject", subject).
			Msg("NATS relay publish failed")
		return
	}

	metrics.NATSMessagesPublished.Inc()
}

// Close drains and closes the NATS connection.
func (r *NATSRelay) Close() {
	if err := r.conn.Drain(); err != nil {
		logging.Warn().Err(err).Msg("NATS relay drain failed")
	}
}
