// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tracknest/tracknest/internal/broadcast"
	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/registry"
)

// ShutdownReason identifies why the hub is shutting down.
// This enables clear observability in logs and metrics.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	// This is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	// This may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// DefaultSendBuffer is the per-client outbound queue depth when none is
// configured.
const DefaultSendBuffer = 64

// Hub tracks live clients by connection ID and adapts transport events into
// registry lifecycle calls: attach → OnConnect, detach → OnDisconnect.
//
// The hub also implements broadcast.Pusher, resolving connection IDs back to
// live clients when the dispatcher fans a fix out.
type Hub struct {
	manager    *registry.Manager
	sendBuffer int

	clients    map[string]*Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a hub writing lifecycle events through manager.
// A non-positive sendBuffer falls back to DefaultSendBuffer.
func NewHub(manager *registry.Manager, sendBuffer int) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Hub{
		manager:    manager,
		sendBuffer: sendBuffer,
		clients:    make(map[string]*Client),
		Unregister: make(chan *Client, 16),
	}
}

// Connect registers a client synchronously: the registry record exists and
// the client is reachable by Push before this returns, so a join arriving
// immediately after the upgrade cannot race the connect.
func (h *Hub) Connect(ctx context.Context, client *Client) error {
	if err := h.manager.OnConnect(ctx, client.id); err != nil {
		return err
	}

	h.mu.Lock()
	h.clients[client.id] = client
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WebSocketConnections.Inc()
	logging.Info().
		Str("connection_id", client.id).
		Int("total_clients", total).
		Msg("websocket client connected")
	return nil
}

// RunWithContext processes client detachment with context support for
// graceful shutdown. Designed for use with suture supervision.
//
// When the context is canceled:
//  1. All connected clients are gracefully closed
//  2. The method returns ctx.Err()
//
// This allows the hub to be restarted by a supervisor without leaving
// orphaned connections.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Unregister:
			h.detach(ctx, client)
		}
	}
}

// detach removes the client from the hub and the registry. Safe against
// duplicate unregister notifications.
//
// Closes the client's done channel rather than its send channel: a
// concurrent Push may be blocked sending on send, and closing a channel
// with a blocked sender panics.
func (h *Hub) detach(ctx context.Context, client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.id]
	if ok && current == client {
		delete(h.clients, client.id)
		close(client.done)
	}
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	metrics.WebSocketConnections.Dec()
	if err := h.manager.OnDisconnect(ctx, client.id); err != nil {
		logging.Error().
			Err(err).
			Str("connection_id", client.id).
			Msg("failed to remove connection from registry")
	}
	logging.Info().
		Str("connection_id", client.id).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// Push implements broadcast.Pusher. A missing client means the connection
// is gone (permanent); a full send queue or expired context means the
// client is not keeping up (transient).
func (h *Hub) Push(ctx context.Context, connectionID string, payload []byte) broadcast.Outcome {
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()

	if !ok {
		return broadcast.PermanentFailure
	}

	select {
	case client.send <- payload:
		metrics.WebSocketMessagesSent.Inc()
		return broadcast.Delivered
	case <-client.done:
		// Detached while we were blocked on its queue
		return broadcast.PermanentFailure
	case <-ctx.Done():
		metrics.WebSocketErrors.WithLabelValues("push_timeout").Inc()
		return broadcast.TransientFailure
	}
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information.
//
// Note: ctx.Err() is NOT logged as an error because context cancellation
// is expected behavior during graceful shutdown.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	reason := getShutdownReason(ctx)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients gracefully closes all connected WebSocket clients.
// Called during shutdown to ensure clean termination.
// Closes clients in ID order for consistent shutdown behavior.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		close(h.clients[id].done)
		delete(h.clients, id)
	}
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
