// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/tracknest/tracknest/internal/broadcast"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/registry"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsFixture struct {
	hub     *Hub
	store   registry.Store
	manager *registry.Manager
	server  *httptest.Server
	ids     chan string
}

func startWSServer(t *testing.T) *wsFixture {
	t.Helper()

	store := registry.NewMemoryStore()
	manager := registry.NewManager(store, time.Hour)
	hub := NewHub(manager, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()

	f := &wsFixture{
		hub:     hub,
		store:   store,
		manager: manager,
		ids:     make(chan string, 8),
	}

	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		id := uuid.NewString()
		client := NewClient(hub, conn, id)
		if err := hub.Connect(r.Context(), client); err != nil {
			_ = conn.Close()
			return
		}
		f.ids <- id
		client.Start()
	}))

	t.Cleanup(func() {
		f.server.Close()
		cancel()
		<-done
	})
	return f
}

func (f *wsFixture) dial(t *testing.T) (*websocket.Conn, string) {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	if resp != nil {
		defer resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	select {
	case id := <-f.ids:
		return conn, id
	case <-time.After(time.Second):
		t.Fatal("server did not report connection ID")
		return nil, ""
	}
}

func readControl(t *testing.T, conn *websocket.Conn) controlMessage {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("failed to decode %s: %v", data, err)
	}
	return msg
}

func sendJSON(t *testing.T, conn *websocket.Conn, v interface{}) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestClient_JoinProtocol(t *testing.T) {
	f := startWSServer(t)
	conn, id := f.dial(t)

	sendJSON(t, conn, map[string]string{"type": "join", "deviceCode": "DEV001"})

	ack := readControl(t, conn)
	if ack.Type != MessageTypeJoined {
		t.Fatalf("expected joined ack, got %+v", ack)
	}
	if ack.DeviceCode != "DEV001" {
		t.Errorf("ack deviceCode = %q, want DEV001", ack.DeviceCode)
	}

	members, err := f.store.ListMembers(context.Background(), "DEV001")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 1 || members[0] != id {
		t.Errorf("expected [%s] in DEV001, got %v", id, members)
	}
}

func TestClient_JoinWithoutDeviceCode(t *testing.T) {
	f := startWSServer(t)
	conn, _ := f.dial(t)

	sendJSON(t, conn, map[string]string{"type": "join"})

	reply := readControl(t, conn)
	if reply.Type != MessageTypeError {
		t.Fatalf("expected error reply, got %+v", reply)
	}

	members, err := f.store.ListMembers(context.Background(), "")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("join without deviceCode must not create membership, got %v", members)
	}
}

func TestClient_RejoinMovesRoom(t *testing.T) {
	f := startWSServer(t)
	conn, id := f.dial(t)
	ctx := context.Background()

	sendJSON(t, conn, map[string]string{"type": "join", "deviceCode": "DEV001"})
	if ack := readControl(t, conn); ack.Type != MessageTypeJoined {
		t.Fatalf("first join not acked: %+v", ack)
	}

	sendJSON(t, conn, map[string]string{"type": "join", "deviceCode": "DEV002"})
	if ack := readControl(t, conn); ack.Type != MessageTypeJoined {
		t.Fatalf("second join not acked: %+v", ack)
	}

	old, err := f.store.ListMembers(ctx, "DEV001")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(old) != 0 {
		t.Errorf("expected DEV001 empty after rejoin, got %v", old)
	}

	current, err := f.store.ListMembers(ctx, "DEV002")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(current) != 1 || current[0] != id {
		t.Errorf("expected [%s] in DEV002, got %v", id, current)
	}
}

func TestClient_PingPong(t *testing.T) {
	f := startWSServer(t)
	conn, _ := f.dial(t)

	sendJSON(t, conn, map[string]string{"type": "ping"})

	reply := readControl(t, conn)
	if reply.Type != MessageTypePong {
		t.Errorf("expected pong, got %+v", reply)
	}
}

func TestClient_UnknownMessageAcked(t *testing.T) {
	f := startWSServer(t)
	conn, id := f.dial(t)
	ctx := context.Background()

	sendJSON(t, conn, map[string]string{"type": "subscribe", "deviceCode": "DEV001"})

	reply := readControl(t, conn)
	if reply.Type != MessageTypeAck {
		t.Errorf("expected ack for unknown message, got %+v", reply)
	}

	// No side effect: the connection is still roomless.
	rec, err := f.store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.RoomKey != "" {
		t.Errorf("unknown message mutated state, room = %q", rec.RoomKey)
	}
}

func TestClient_MalformedFrameAcked(t *testing.T) {
	f := startWSServer(t)
	conn, _ := f.dial(t)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	reply := readControl(t, conn)
	if reply.Type != MessageTypeAck {
		t.Errorf("expected ack for malformed frame, got %+v", reply)
	}
}

func TestClient_ReceivesLocationUpdate(t *testing.T) {
	f := startWSServer(t)
	conn, _ := f.dial(t)

	sendJSON(t, conn, map[string]string{"type": "join", "deviceCode": "DEV001"})
	if ack := readControl(t, conn); ack.Type != MessageTypeJoined {
		t.Fatalf("join not acked: %+v", ack)
	}

	d := broadcast.NewDispatcher(f.store, f.manager, f.hub, time.Second)
	fix := &models.LocationFix{
		DeviceCode:   "DEV001",
		IotSimNumber: "89911234",
		Lat:          "12.9",
		Long:         "77.6",
		TrackedAt:    time.Now().UTC(),
	}

	report, err := d.Publish(context.Background(), "DEV001", fix)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if report.Attempted != 1 || report.Delivered != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	var update struct {
		Type       string `json:"type"`
		DeviceCode string `json:"deviceCode"`
		Data       struct {
			Lat  string `json:"lat"`
			Long string `json:"long"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &update); err != nil {
		t.Fatalf("failed to decode update %s: %v", data, err)
	}
	if update.Type != "location-update" || update.DeviceCode != "DEV001" {
		t.Errorf("unexpected update: %+v", update)
	}
	if update.Data.Lat != "12.9" || update.Data.Long != "77.6" {
		t.Errorf("unexpected coordinates: %+v", update.Data)
	}
}

func TestClient_DisconnectRemovesRegistration(t *testing.T) {
	f := startWSServer(t)
	conn, id := f.dial(t)
	ctx := context.Background()

	sendJSON(t, conn, map[string]string{"type": "join", "deviceCode": "DEV001"})
	if ack := readControl(t, conn); ack.Type != MessageTypeJoined {
		t.Fatalf("join not acked: %+v", ack)
	}

	_ = conn.Close()

	deadline := time.After(2 * time.Second)
	for {
		if _, err := f.store.Get(ctx, id); err != nil {
			break // record removed
		}
		select {
		case <-deadline:
			t.Fatal("registry record not removed after disconnect")
		case <-time.After(10 * time.Millisecond):
		}
	}

	members, err := f.store.ListMembers(ctx, "DEV001")
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 0 {
		t.Errorf("expected empty room after disconnect, got %v", members)
	}
}
