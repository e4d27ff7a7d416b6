// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package supervisor runs tracknest's long-lived services under a suture v4
supervisor tree.

Services are grouped into three layers so failures stay contained:

	RootSupervisor ("tracknest")
	├── DataSupervisor ("data-layer")
	│   └── SweeperService
	├── MessagingSupervisor ("messaging-layer")
	│   ├── WebSocketHubService
	│   └── NATS relay (with -tags nats)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crashing sweeper does not touch open WebSocket sessions, and a
messaging-layer restart does not interrupt location ingest on the API
layer. Crashed services restart with exponential backoff per TreeConfig;
supervisor events are logged through sutureslog into zerolog.

Typical wiring in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddDataService(services.NewSweeperService(sweeper))
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	if err := tree.Serve(ctx); err != nil {
	    logging.Error().Err(err).Msg("supervisor stopped")
	}

Services implement suture.Service. Returning nil stops the service for
good; returning an error schedules a restart; on context cancellation a
service should drain and return promptly. When a service overruns the
shutdown timeout, UnstoppedServiceReport names it so hangs can be traced
to the offending goroutine.

The embedded stores are deliberately outside the tree. DuckDB and the
optional BadgerDB registry backend are libraries opened at startup and
closed at shutdown, not restartable processes; the sweeper service covers
their periodic maintenance.
*/
package supervisor
