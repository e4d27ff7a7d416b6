// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package websocket provides the viewer-facing transport for live location
updates.

This package implements WebSocket support using the gorilla/websocket
library with a hub-client architecture. The hub is the adapter between the
transport and the connection registry: attaching a client registers it with
the lifecycle manager, a read error or close unregisters it, and the hub
resolves connection IDs back to live clients when the broadcast dispatcher
pushes a fix.

Key Components:

  - Hub: tracks live clients by connection ID, adapts transport events into
    registry lifecycle calls, and implements broadcast.Pusher
  - Client: one WebSocket connection with read/write goroutines

Each client has two goroutines:
  - readPump: reads client frames, handles the join protocol and pong deadlines
  - writePump: writes queued payloads, sends periodic pings

Client Protocol:

A viewer joins a device room by sending:

	{"type": "join", "deviceCode": "DEV001"}

The server acknowledges with:

	{"type": "joined", "message": "joined room DEV001", "deviceCode": "DEV001"}

A join without a deviceCode is answered with an error frame and causes no
state change. Any frame that is not a join or ping is acknowledged with
{"type":"ack"} and has no side effect. After joining, the client receives
location-update frames until it disconnects or is evicted; joining another
device moves the membership rather than adding a second room.

Usage Example - Server:

	store := registry.NewMemoryStore()
	manager := registry.NewManager(store, registry.DefaultTTL)
	hub := websocket.NewHub(manager, 64)
	svc := services.NewWebSocketHubService(hub)
	tree.AddMessagingService(svc)

The upgrade handler assigns a connection ID, attaches the client, and
starts its pumps:

	id := uuid.NewString()
	client := websocket.NewClient(hub, conn, id)
	if err := hub.Connect(r.Context(), client); err != nil { ... }
	client.Start()

Delivery Semantics:

Pushes are at-most-once. A full send queue or push timeout is a transient
failure and the connection is kept; a connection ID with no live client is
a permanent failure and the dispatcher evicts the registry record.
*/
package websocket
