// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*SweeperService)(nil)

// stubSweeper stands in for the registry sweeper's Run loop.
type stubSweeper struct {
	runErr   error
	runCount atomic.Int32
}

func (s *stubSweeper) Run(ctx context.Context) error {
	s.runCount.Add(1)
	if s.runErr != nil {
		return s.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestNewSweeperService(t *testing.T) {
	sweeper := &stubSweeper{}
	svc := NewSweeperService(sweeper)

	if svc.sweeper != sweeper {
		t.Error("sweeper not assigned")
	}
	if svc.String() != "registry-sweeper" {
		t.Errorf("String() = %q, want registry-sweeper", svc.String())
	}
}

func TestSweeperService_Serve(t *testing.T) {
	t.Run("stops with the context", func(t *testing.T) {
		sweeper := &stubSweeper{}
		svc := NewSweeperService(sweeper)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
		case <-time.After(time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if sweeper.runCount.Load() != 1 {
			t.Errorf("Run calls = %d, want 1", sweeper.runCount.Load())
		}
	})

	t.Run("propagates sweep errors for restart", func(t *testing.T) {
		sweepErr := errors.New("store unavailable")
		sweeper := &stubSweeper{runErr: sweepErr}
		svc := NewSweeperService(sweeper)

		if err := svc.Serve(context.Background()); !errors.Is(err, sweepErr) {
			t.Errorf("Serve() error = %v, want %v", err, sweepErr)
		}
	})
}
