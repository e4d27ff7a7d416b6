// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*HTTPServerService)(nil)

// stubHTTPServer stands in for the API server on port 8857.
type stubHTTPServer struct {
	listenErr   error
	shutdownErr error
	started     chan struct{}
	stopCh      chan struct{}
	shutdowns   int
}

func newStubHTTPServer() *stubHTTPServer {
	return &stubHTTPServer{
		started: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
	}
}

func (s *stubHTTPServer) ListenAndServe() error {
	select {
	case s.started <- struct{}{}:
	default:
	}
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stopCh
	return http.ErrServerClosed
}

func (s *stubHTTPServer) Shutdown(ctx context.Context) error {
	s.shutdowns++
	close(s.stopCh)
	return s.shutdownErr
}

func TestNewHTTPServerService(t *testing.T) {
	server := newStubHTTPServer()
	svc := NewHTTPServerService(server, 5*time.Second)

	if svc.server != server {
		t.Error("server not assigned")
	}
	if svc.shutdownTimeout != 5*time.Second {
		t.Errorf("shutdownTimeout = %v, want 5s", svc.shutdownTimeout)
	}
	if svc.String() != "http-server" {
		t.Errorf("String() = %q, want http-server", svc.String())
	}

	if svc := NewHTTPServerService(server, 0); svc.shutdownTimeout != 10*time.Second {
		t.Errorf("zero timeout: shutdownTimeout = %v, want default 10s", svc.shutdownTimeout)
	}
}

func TestHTTPServerService_Serve(t *testing.T) {
	t.Run("drains connections on cancellation", func(t *testing.T) {
		server := newStubHTTPServer()
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		select {
		case <-server.started:
		case <-time.After(time.Second):
			t.Fatal("server did not start")
		}
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("Serve() error = %v, want context.Canceled", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return after cancellation")
		}

		if server.shutdowns != 1 {
			t.Errorf("Shutdown calls = %d, want 1", server.shutdowns)
		}
	})

	t.Run("propagates bind failure", func(t *testing.T) {
		bindErr := errors.New("listen tcp 0.0.0.0:8857: address already in use")
		server := newStubHTTPServer()
		server.listenErr = bindErr
		svc := NewHTTPServerService(server, time.Second)

		if err := svc.Serve(context.Background()); !errors.Is(err, bindErr) {
			t.Errorf("Serve() error = %v, want %v", err, bindErr)
		}
	})

	t.Run("propagates shutdown failure", func(t *testing.T) {
		shutdownErr := errors.New("shutdown deadline exceeded")
		server := newStubHTTPServer()
		server.shutdownErr = shutdownErr
		svc := NewHTTPServerService(server, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- svc.Serve(ctx)
		}()

		<-server.started
		cancel()

		select {
		case err := <-errCh:
			if !errors.Is(err, shutdownErr) {
				t.Errorf("Serve() error = %v, want %v", err, shutdownErr)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Serve did not return")
		}
	})
}
