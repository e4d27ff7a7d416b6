// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package websocket

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/metrics"
	"github.com/tracknest/tracknest/internal/registry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 // 4 KB; join requests are tiny
)

// Client message types
const (
	MessageTypeJoin   = "join"
	MessageTypeJoined = "joined"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
	MessageTypeAck    = "ack"
	MessageTypeError  = "error"
)

// inboundMessage is a parsed client frame. Only join and ping carry
// meaning; everything else is acknowledged without side effects.
type inboundMessage struct {
	Type       string `json:"type"`
	DeviceCode string `json:"deviceCode"`
}

// controlMessage is a server-originated reply (join ack, pong, error).
type controlMessage struct {
	Type       string `json:"type"`
	Message    string `json:"message,omitempty"`
	DeviceCode string `json:"deviceCode,omitempty"`
}

// Client is a middleman between one websocket connection and the hub.
// Its id is the connection ID under which the registry tracks the viewer.
//
// The send channel is never closed: closing it would panic any Push
// blocked on it. The hub signals shutdown by closing done instead, and
// writePump owns the connection teardown.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// NewClient creates a client for an upgraded connection. The id must be the
// opaque connection identifier assigned at upgrade time.
func NewClient(hub *Hub, conn *websocket.Conn, id string) *Client {
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		send: make(chan []byte, hub.sendBuffer),
		done: make(chan struct{}),
	}
}

// ID returns the client's connection identifier.
func (c *Client) ID() string {
	return c.id
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}

		metrics.WebSocketMessagesReceived.Inc()
		c.handleMessage(data)
	}
}

// handleMessage dispatches one client frame. Unparseable or unrecognized
// frames are acknowledged without any state change; only a valid join
// mutates the registry.
func (c *Client) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply(controlMessage{Type: MessageTypeAck})
		return
	}

	switch msg.Type {
	case MessageTypeJoin:
		c.handleJoin(msg.DeviceCode)
	case MessageTypePing:
		c.reply(controlMessage{Type: MessageTypePong})
	default:
		c.reply(controlMessage{Type: MessageTypeAck})
	}
}

// handleJoin places this connection into the device room. A missing device
// code is a client error and never reaches the registry; a join for a
// connection the registry no longer knows surfaces only to this client.
func (c *Client) handleJoin(deviceCode string) {
	if deviceCode == "" {
		c.reply(controlMessage{
			Type:    MessageTypeError,
			Message: "deviceCode is required to join a room",
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()

	if err := c.hub.manager.OnJoin(ctx, c.id, deviceCode); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			c.reply(controlMessage{
				Type:    MessageTypeError,
				Message: "connection is not registered",
			})
			return
		}

		logging.Error().
			Err(err).
			Str("connection_id", c.id).
			Str("device_code", deviceCode).
			Msg("failed to join room")
		c.reply(controlMessage{
			Type:    MessageTypeError,
			Message: "failed to join room",
		})
		return
	}

	c.reply(controlMessage{
		Type:       MessageTypeJoined,
		Message:    "joined room " + deviceCode,
		DeviceCode: deviceCode,
	})
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Explicitly ignore error - best-effort cleanup
	}()

	for {
		select {
		case <-c.done:
			// The hub detached this client
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
				logging.Error().Err(err).Msg("failed to write close message")
			}
			return

		case payload := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				logging.Error().Err(err).Msg("failed to write message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// reply enqueues a control message for this client, dropping it if the
// client is not draining its queue.
func (c *Client) reply(msg controlMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}

	select {
	case c.send <- payload:
	default:
		logging.Warn().
			Str("connection_id", c.id).
			Str("message_type", msg.Type).
			Msg("client send queue full, dropping reply")
	}
}

// Start begins reading and writing for the client
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
