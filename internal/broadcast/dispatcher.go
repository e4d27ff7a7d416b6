// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/registry"
)

// DefaultPushTimeout bounds a single member push when no timeout is
// configured. A hang becomes a transient failure instead of stalling the
// whole publish.
const DefaultPushTimeout = 5 * time.Second

// Outcome classifies the result of pushing one payload to one connection.
type Outcome int

const (
	// Delivered means the transport accepted the payload.
	Delivered Outcome = iota

	// TransientFailure means delivery failed but the connection may still
	// be viable (timeout, transport busy). The registry is left untouched
	// and the push is not retried; the next fix attempts delivery again.
	TransientFailure

	// PermanentFailure means the transport reports the connection is gone.
	// The dispatcher evicts it from the registry.
	PermanentFailure
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case TransientFailure:
		return "transient_failure"
	case PermanentFailure:
		return "permanent_failure"
	default:
		return "unknown"
	}
}

// Pusher delivers a serialized payload to a single connection.
// Implementations classify transport errors into Outcome values, keeping
// the dispatcher's eviction policy independent of any transport's error
// codes.
type Pusher interface {
	Push(ctx context.Context, connectionID string, payload []byte) Outcome
}

// Report summarizes one publish fan-out. Informational only: partial
// delivery failure never fails the publish itself.
type Report struct {
	// Attempted is the number of room members a push was issued for.
	Attempted int `json:"attempted"`

	// Delivered is the number of pushes the transport accepted.
	Delivered int `json:"delivered"`

	// Evicted is the number of members removed after a permanent failure.
	Evicted int `json:"evicted"`
}

// envelope is the wire format pushed to viewers.
type envelope struct {
	Type         string              `json:"type"`
	DeviceCode   string              `json:"deviceCode"`
	IotSimNumber string              `json:"iotSimNumber"`
	Data         models.LocationData `json:"data"`
}

// Dispatcher fans one location fix out to every live viewer of a device
// room. Reads membership through the registry store; all registry writes
// (evictions) go through the lifecycle manager.
type Dispatcher struct {
	store       registry.Store
	manager     *registry.Manager
	pusher      Pusher
	pushTimeout time.Duration
}

// NewDispatcher creates a dispatcher. A non-positive pushTimeout falls back
// to DefaultPushTimeout.
func NewDispatcher(store registry.Store, manager *registry.Manager, pusher Pusher, pushTimeout time.Duration) *Dispatcher {
	if pushTimeout <= 0 {
		pushTimeout = DefaultPushTimeout
	}
	return &Dispatcher{
		store:       store,
		manager:     manager,
		pusher:      pusher,
		pushTimeout: pushTimeout,
	}
}

// Publish delivers fix to every live member of the deviceCode room.
//
// The payload is serialized once and the identical bytes are pushed to all
// members concurrently, each push bounded by the configured timeout. Publish
// returns once every push has completed or timed out. It errors only when
// membership resolution or serialization fails; per-member failures are
// reported in the Report, with permanent failures evicted from the registry.
func (d *Dispatcher) Publish(ctx context.Context, deviceCode string, fix *models.LocationFix) (Report, error) {
	members, err := d.store.ListMembers(ctx, deviceCode)
	if err != nil {
		return Report{}, fmt.Errorf("resolve members for %s: %w", deviceCode, err)
	}

	// No viewers is the common case for most fixes, and it is a success.
	if len(members) == 0 {
		return Report{}, nil
	}

	payload, err := json.Marshal(envelope{
		Type:         "location-update",
		DeviceCode:   fix.DeviceCode,
		IotSimNumber: fix.IotSimNumber,
		Data:         fix.Data(),
	})
	if err != nil {
		return Report{}, fmt.Errorf("serialize fix for %s: %w", deviceCode, err)
	}

	start := time.Now()
	outcomes := make([]Outcome, len(members))

	var wg sync.WaitGroup
	for i, id := range members {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()

			pushCtx, cancel := context.WithTimeout(ctx, d.pushTimeout)
			defer cancel()

			outcomes[i] = d.pusher.Push(pushCtx, id, payload)
		}(i, id)
	}
	wg.Wait()

	report := Report{Attempted: len(members)}
	for i, outcome := range outcomes {
		metrics.RecordPush(outcome.String())

		switch outcome {
		case Delivered:
			report.Delivered++
		case PermanentFailure:
			if err := d.manager.Evict(ctx, members[i]); err != nil {
				logging.Error().
					Err(err).
					Str("connection_id", members[i]).
					Msg("Failed to evict dead connection")
				continue
			}
			report.Evicted++
		case TransientFailure:
			logging.Debug().
				Str("connection_id", members[i]).
				Str("device_code", deviceCode).
				Msg("Transient push failure, keeping connection")
		}
	}

	metrics.RecordPublish(report.Attempted, time.Since(start))
	logging.Debug().
		Str("device_code", deviceCode).
		Int("attempted", report.Attempted).
		Int("delivered", report.Delivered).
		Int("evicted", report.Evicted).
		Msg("Publish complete")

	return report, nil
}
