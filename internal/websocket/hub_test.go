// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package websocket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tracknest/tracknest/internal/broadcast"
	"github.com/tracknest/tracknest/internal/registry"
)

func newTestHub(t *testing.T) (*Hub, registry.Store) {
	t.Helper()
	store := registry.NewMemoryStore()
	manager := registry.NewManager(store, time.Hour)
	return NewHub(manager, 4), store
}

func TestNewHub_Defaults(t *testing.T) {
	hub, _ := newTestHub(t)
	if hub.GetClientCount() != 0 {
		t.Errorf("expected empty hub, got %d clients", hub.GetClientCount())
	}

	fallback := NewHub(registry.NewManager(registry.NewMemoryStore(), time.Hour), 0)
	if fallback.sendBuffer != DefaultSendBuffer {
		t.Errorf("expected DefaultSendBuffer fallback, got %d", fallback.sendBuffer)
	}
}

func TestHub_ConnectRegistersConnection(t *testing.T) {
	hub, store := newTestHub(t)
	ctx := context.Background()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if hub.GetClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", hub.GetClientCount())
	}

	conn, err := store.Get(ctx, "c1")
	if err != nil {
		t.Fatalf("registry record missing after Connect: %v", err)
	}
	if conn.RoomKey != "" {
		t.Errorf("expected no room before join, got %q", conn.RoomKey)
	}
}

func TestHub_Push_Delivered(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx := context.Background()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	payload := []byte(`{"type":"location-update"}`)
	if outcome := hub.Push(ctx, "c1", payload); outcome != broadcast.Delivered {
		t.Errorf("expected Delivered, got %v", outcome)
	}

	select {
	case got := <-client.send:
		if string(got) != string(payload) {
			t.Errorf("queued payload = %s, want %s", got, payload)
		}
	default:
		t.Error("payload not queued on client")
	}
}

func TestHub_Push_MissingClientIsPermanent(t *testing.T) {
	hub, _ := newTestHub(t)

	outcome := hub.Push(context.Background(), "ghost", []byte("x"))
	if outcome != broadcast.PermanentFailure {
		t.Errorf("expected PermanentFailure for unknown connection, got %v", outcome)
	}
}

func TestHub_Push_FullQueueIsTransient(t *testing.T) {
	store := registry.NewMemoryStore()
	manager := registry.NewManager(store, time.Hour)
	hub := NewHub(manager, 1)
	ctx := context.Background()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if outcome := hub.Push(ctx, "c1", []byte("first")); outcome != broadcast.Delivered {
		t.Fatalf("expected first push delivered, got %v", outcome)
	}

	// Queue is full and nobody is draining it; a bounded push times out.
	pushCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if outcome := hub.Push(pushCtx, "c1", []byte("second")); outcome != broadcast.TransientFailure {
		t.Errorf("expected TransientFailure for full queue, got %v", outcome)
	}

	// The connection stays registered.
	if _, err := store.Get(ctx, "c1"); err != nil {
		t.Errorf("expected connection kept after transient failure: %v", err)
	}
}

func TestHub_UnregisterRemovesClient(t *testing.T) {
	hub, store := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	hub.Unregister <- client

	deadline := time.After(time.Second)
	for hub.GetClientCount() != 0 {
		select {
		case <-deadline:
			t.Fatal("client not removed after unregister")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if _, err := store.Get(context.Background(), "c1"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected registry record gone, got %v", err)
	}

	// Duplicate unregister notifications are tolerated.
	hub.Unregister <- client
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop after cancel")
	}

	if hub.GetClientCount() != 0 {
		t.Errorf("expected all clients closed on shutdown, got %d", hub.GetClientCount())
	}

	select {
	case <-client.done:
	default:
		t.Error("expected client done channel closed on shutdown")
	}
}

func TestHub_Push_DetachWhileBlockedIsPermanent(t *testing.T) {
	store := registry.NewMemoryStore()
	manager := registry.NewManager(store, time.Hour)
	hub := NewHub(manager, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() { runDone <- hub.RunWithContext(ctx) }()

	client := NewClient(hub, nil, "c1")
	if err := hub.Connect(ctx, client); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// Fill the queue so the next push blocks in its select.
	if outcome := hub.Push(ctx, "c1", []byte("first")); outcome != broadcast.Delivered {
		t.Fatalf("expected first push delivered, got %v", outcome)
	}

	outcomeCh := make(chan broadcast.Outcome, 1)
	go func() { outcomeCh <- hub.Push(ctx, "c1", []byte("second")) }()
	time.Sleep(20 * time.Millisecond)

	// Detaching the client must unblock the push, not panic it.
	hub.Unregister <- client

	select {
	case outcome := <-outcomeCh:
		if outcome != broadcast.PermanentFailure {
			t.Errorf("expected PermanentFailure after detach, got %v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("push still blocked after client detach")
	}

	if _, err := store.Get(context.Background(), "c1"); !errors.Is(err, registry.ErrNotFound) {
		t.Errorf("expected registry record gone after detach, got %v", err)
	}
}

func TestGetShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("expected context_canceled, got %s", got)
	}

	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	time.Sleep(time.Millisecond)
	if got := getShutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("expected context_deadline, got %s", got)
	}
}
