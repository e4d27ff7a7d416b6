// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package registry

import (
	"context"
	"time"

	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
)

// DefaultSweepInterval is how often the sweeper physically removes
// expired records when no interval is configured.
const DefaultSweepInterval = time.Hour

// Sweeper periodically deletes expired connection records.
//
// Correctness never depends on the sweeper: ListMembers filters expired
// entries on read. The sweeper only reclaims storage occupied by records
// whose transport disconnect notification was lost.
type Sweeper struct {
	store    Store
	interval time.Duration
}

// NewSweeper creates a sweeper over store. A non-positive interval falls
// back to DefaultSweepInterval.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		interval: interval,
	}
}

// Run sweeps on the configured interval until ctx is canceled.
// Returns ctx.Err() on shutdown so a supervisor treats it as a clean exit.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logging.Info().
		Dur("interval", s.interval).
		Msg("Registry sweeper started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Registry sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one expiry pass. Errors are logged, not fatal; the next tick
// retries naturally.
func (s *Sweeper) sweep(ctx context.Context) {
	start := time.Now()
	removed, err := s.store.DeleteExpired(ctx)
	if err != nil {
		logging.Error().
			Err(err).
			Msg("Registry sweep failed")
		return
	}

	metrics.RecordSweep(removed, time.Since(start))
	if removed > 0 {
		logging.Info().
			Int("removed", removed).
			Dur("duration", time.Since(start)).
			Msg("Registry sweep removed expired connections")
	}
}
