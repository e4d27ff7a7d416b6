// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package services adapts tracknest components to the suture.Service
interface so the supervisor tree can run them.

Three wrappers cover the supervised components:

  - HTTPServerService bridges http.Server's blocking ListenAndServe into
    a context-aware Serve with a bounded graceful Shutdown.
  - WebSocketHubService runs the broadcast hub's Run loop and closes
    connected clients on cancellation.
  - SweeperService runs the registry sweeper that evicts expired room
    memberships.

Each wrapper follows the suture contract: return nil to stop for good,
return an error to be restarted, and drain promptly when the context is
canceled. All of them implement fmt.Stringer with a stable name
("http-server", "websocket-hub", "registry-sweeper") so supervisor log
lines identify the service.

Wiring happens in main:

	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddDataService(services.NewSweeperService(sweeper))

The wrappers accept small interfaces rather than concrete types, so tests
substitute stubs that record starts and shutdowns.
*/
package services
