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

var _ suture.Service = (*WebSocketHubService)(nil)

// stubHub stands in for the broadcast hub's RunWithContext loop.
type stubHub struct {
	runErr   error
	runCount atomic.Int32
}

func (s *stubHub) RunWithContext(ctx context.Context) error {
	s.runCount.Add(1)
	if s.runErr != nil {
		return s.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestNewWebSocketHubService(t *testing.T) {
	hub := &stubHub{}
	svc := NewWebSocketHubService(hub)

	if svc.hub != hub {
		t.Error("hub not assigned")
	}
	if svc.String() != "websocket-hub" {
		t.Errorf("String() = %q, want websocket-hub", svc.String())
	}
}

func TestWebSocketHubService_Serve(t *testing.T) {
	t.Run("stops with the context", func(t *testing.T) {
		hub := &stubHub{}
		svc := NewWebSocketHubService(hub)

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

		if hub.runCount.Load() != 1 {
			t.Errorf("RunWithContext calls = %d, want 1", hub.runCount.Load())
		}
	})

	t.Run("propagates hub errors for restart", func(t *testing.T) {
		hubErr := errors.New("hub loop failed")
		hub := &stubHub{runErr: hubErr}
		svc := NewWebSocketHubService(hub)

		if err := svc.Serve(context.Background()); !errors.Is(err, hubErr) {
			t.Errorf("Serve() error = %v, want %v", err, hubErr)
		}
	})
}
