// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package supervisor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*stubService)(nil)

// stubService stands in for a tracknest service (sweeper, hub, HTTP server)
// so the tests can observe how the tree starts and restarts its layers.
type stubService struct {
	name       string
	startCount atomic.Int32
	failsLeft  atomic.Int32
}

func newStubService(name string) *stubService {
	return &stubService{name: name}
}

func (s *stubService) Serve(ctx context.Context) error {
	s.startCount.Add(1)
	if s.failsLeft.Load() > 0 {
		s.failsLeft.Add(-1)
		return errors.New("stub crash")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) String() string { return s.name }

func testTreeLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewSupervisorTree(t *testing.T) {
	t.Run("builds root with layer supervisors", func(t *testing.T) {
		tree, err := NewSupervisorTree(testTreeLogger(), TreeConfig{
			FailureThreshold: 5,
			FailureBackoff:   time.Second,
			ShutdownTimeout:  10 * time.Second,
		})
		if err != nil {
			t.Fatalf("NewSupervisorTree() error = %v", err)
		}
		if tree.Root() == nil {
			t.Error("root supervisor should not be nil")
		}
	})

	t.Run("zero config gets defaults", func(t *testing.T) {
		tree, err := NewSupervisorTree(testTreeLogger(), TreeConfig{})
		if err != nil {
			t.Fatalf("NewSupervisorTree() error = %v", err)
		}

		want := DefaultTreeConfig()
		if tree.config.FailureThreshold != want.FailureThreshold {
			t.Errorf("FailureThreshold = %f, want %f", tree.config.FailureThreshold, want.FailureThreshold)
		}
		if tree.config.FailureDecay != want.FailureDecay {
			t.Errorf("FailureDecay = %f, want %f", tree.config.FailureDecay, want.FailureDecay)
		}
		if tree.config.FailureBackoff != want.FailureBackoff {
			t.Errorf("FailureBackoff = %v, want %v", tree.config.FailureBackoff, want.FailureBackoff)
		}
		if tree.config.ShutdownTimeout != want.ShutdownTimeout {
			t.Errorf("ShutdownTimeout = %v, want %v", tree.config.ShutdownTimeout, want.ShutdownTimeout)
		}
	})
}

func TestSupervisorTree_StartsAllLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(testTreeLogger(), TreeConfig{ShutdownTimeout: time.Second})

	sweeper := newStubService("registry-sweeper")
	hub := newStubService("websocket-hub")
	api := newStubService("http-server")
	tree.AddDataService(sweeper)
	tree.AddMessagingService(hub)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- tree.Serve(ctx)
	}()

	deadline := time.After(2 * time.Second)
	for sweeper.startCount.Load() < 1 || hub.startCount.Load() < 1 || api.startCount.Load() < 1 {
		select {
		case <-deadline:
			t.Fatalf("layers not started: sweeper=%d hub=%d api=%d",
				sweeper.startCount.Load(), hub.startCount.Load(), api.startCount.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("tree did not shut down in time")
	}
}

func TestSupervisorTree_ServeBackground(t *testing.T) {
	tree, _ := NewSupervisorTree(testTreeLogger(), TreeConfig{ShutdownTimeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	errCh := tree.ServeBackground(ctx)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("ServeBackground() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Error("did not receive from error channel")
	}
}

func TestSupervisorTree_RestartsCrashedService(t *testing.T) {
	tree, _ := NewSupervisorTree(testTreeLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})

	flaky := newStubService("nats-relay")
	flaky.failsLeft.Store(2)
	stable := newStubService("http-server")

	tree.AddMessagingService(flaky)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tree.Serve(ctx)

	deadline := time.After(2 * time.Second)
	for flaky.startCount.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 starts after 2 crashes, got %d", flaky.startCount.Load())
		case <-time.After(10 * time.Millisecond):
		}
	}

	if stable.startCount.Load() < 1 {
		t.Error("stable service was not started")
	}
}

func TestDefaultTreeConfig(t *testing.T) {
	config := DefaultTreeConfig()

	if config.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %f, want 5.0", config.FailureThreshold)
	}
	if config.FailureDecay != 30.0 {
		t.Errorf("FailureDecay = %f, want 30.0", config.FailureDecay)
	}
	if config.FailureBackoff != 15*time.Second {
		t.Errorf("FailureBackoff = %v, want 15s", config.FailureBackoff)
	}
	if config.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", config.ShutdownTimeout)
	}
}
