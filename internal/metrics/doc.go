// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP request latency and throughput
  - Database query performance (DuckDB)
  - WebSocket connection lifecycle
  - Connection registry activity (joins, evictions, expiry sweeps)
  - Location broadcast fan-out outcomes
  - Ingest acceptance and rejection rates

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8857/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate-limited requests (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table

WebSocket Metrics:
  - websocket_connections: Active connections (gauge)
  - websocket_messages_sent_total: Outbound messages (counter)
  - websocket_messages_received_total: Inbound messages (counter)
  - websocket_errors_total: Connection errors (counter)
    Labels: error_type

Registry Metrics:
  - registry_room_joins_total: Room join operations (counter)
  - registry_evictions_total: Evicted connections (counter)
    Labels: reason (push_failure, expired)
  - registry_sweep_duration_seconds: Expiry sweep duration (histogram)
  - registry_sweep_removed_total: Records removed by sweeps (counter)

Broadcast Metrics:
  - broadcast_publishes_total: Room publish operations (counter)
  - broadcast_pushes_total: Member pushes by outcome (counter)
    Labels: outcome (delivered, transient_failure, permanent_failure)
  - broadcast_publish_duration_seconds: Fan-out latency (histogram)
  - broadcast_room_size: Members attempted per publish (histogram)

Ingest Metrics:
  - location_fixes_ingested_total: Accepted fixes (counter)
  - location_fixes_rejected_total: Rejected fixes (counter)
    Labels: reason (validation, unknown_device, rate_limited)

# Usage

Metrics are registered automatically via promauto at package initialization.
Record helpers wrap the common label combinations:

	start := time.Now()
	rows, err := db.Query(...)
	metrics.RecordDBQuery("SELECT", "location_fixes", time.Since(start), err)

Gauges are adjusted directly:

	metrics.WebSocketConnections.Inc()
	defer metrics.WebSocketConnections.Dec()

# Cardinality

Label values are restricted to closed sets (route patterns, outcome enums,
table names). Device codes, connection IDs and other unbounded identifiers
must never be used as label values.
*/
package metrics
