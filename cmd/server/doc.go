// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package main is the entry point for the Tracknest server application.

Tracknest is a self-hosted backend for IoT GPS trackers. Devices POST
location fixes over HTTP; the server persists them in DuckDB and fans
each fix out in real time to websocket viewers subscribed to that
device's room.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("tracknest")
	├── DataSupervisor ("data-layer")
	│   └── Registry Sweeper (expired room membership cleanup)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket Hub (real-time location updates)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API + websocket endpoint)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB for device and fix persistence
 4. Registry: Connection registry backend (memory or BadgerDB)
 5. WebSocket Hub: Real-time location updates to connected viewers
 6. Broadcast Dispatcher: Room fan-out with per-viewer push deadlines
 7. Authentication: JWT or no-auth mode, bootstrap admin user
 8. NATS Relay (optional): Republish fixes to NATS subjects
 9. Supervisor Tree: Suture v4 process supervision
 10. HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8857               # HTTP server port (EPSG:8857 reference)
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Authentication (choose one mode)
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>       # Required for JWT mode
	ADMIN_USERNAME=admin
	ADMIN_PASSWORD=<password>

	# Registry backend
	REGISTRY_BACKEND=memory      # memory or badger
	REGISTRY_PATH=/data/registry # BadgerDB directory for the badger backend
	REGISTRY_TTL=24h             # Stale entry horizon
	REGISTRY_SWEEP_INTERVAL=1h   # Physical cleanup cadence, 0 disables

	# Broadcast
	BROADCAST_PUSH_TIMEOUT=5s    # Per-viewer push deadline
	BROADCAST_SEND_BUFFER=64     # Per-connection outbound queue length

	# Ingestion throttle
	INGEST_RATE=10               # Fixes per second per device
	INGEST_BURST=30              # Burst allowance per device

# Build Tags

Optional build tags enable additional functionality:

	go build ./cmd/server               # Standard build
	go build -tags nats ./cmd/server    # Enable the NATS fix relay

Without the tag, NATS_ENABLED=true fails at startup with a clear error.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Closes websocket clients
 3. Waits for in-flight requests (10s timeout)
 4. Closes the NATS relay if enabled
 5. Flushes and closes the registry backend and database
 6. Reports any services that failed to stop

# Usage Examples

Development (no auth):

	export ENVIRONMENT=development
	export AUTH_MODE=none
	go run ./cmd/server

Production (JWT + persistent registry):

	export AUTH_MODE=jwt
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin ADMIN_PASSWORD=secure-password
	export REGISTRY_BACKEND=badger REGISTRY_PATH=/data/registry
	./tracknest

Docker:

	docker run -d \
	  -e JWT_SECRET=xxx \
	  -e ADMIN_USERNAME=admin \
	  -e ADMIN_PASSWORD=secure-password \
	  -v tracknest-data:/data \
	  -p 8857:8857 \
	  tracknest/tracknest

# Port 8857

The default port 8857 references EPSG:8857 (Equal Earth projection),
a nod to the geographic data the server carries.

# API Surface

The API is organized into a small set of route groups:

  - Health: Liveness, readiness, and aggregate status checks
  - Auth: Login, logout, current session info
  - Locations: Device fix ingestion and history queries
  - Devices: Device provisioning and management
  - WebSocket: Real-time location update subscription at /ws
  - Metrics: Prometheus exposition at /metrics

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/broadcast: Room fan-out dispatcher
  - internal/registry: Connection registry backends
*/
package main
