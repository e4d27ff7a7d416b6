// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - WebSocket connection lifecycle and room membership
// - Location broadcast fan-out outcomes
// - Connection registry activity

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate-limited requests",
		},
		[]string{"endpoint"},
	)

	// WebSocket Metrics
	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WebSocketMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of messages sent over WebSocket",
		},
	)

	WebSocketMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of messages received over WebSocket",
		},
	)

	WebSocketErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// Registry Metrics
	RegistryRoomJoins = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_room_joins_total",
			Help: "Total number of room join operations",
		},
	)

	RegistryEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registry_evictions_total",
			Help: "Total number of connections evicted from the registry",
		},
		[]string{"reason"}, // "push_failure", "expired"
	)

	RegistrySweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "registry_sweep_duration_seconds",
			Help:    "Duration of registry expiry sweeps in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RegistrySweepRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_sweep_removed_total",
			Help: "Total number of expired records removed by the sweeper",
		},
	)

	// Broadcast Metrics
	BroadcastPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_publishes_total",
			Help: "Total number of room publish operations",
		},
	)

	BroadcastPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broadcast_pushes_total",
			Help: "Total number of individual member pushes by outcome",
		},
		[]string{"outcome"}, // "delivered", "transient_failure", "permanent_failure"
	)

	BroadcastPublishDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_publish_duration_seconds",
			Help:    "Duration of room publish fan-out in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
	)

	BroadcastRoomSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "broadcast_room_size",
			Help:    "Number of members attempted per publish",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
	)

	// Ingest Metrics
	LocationFixesIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "location_fixes_ingested_total",
			Help: "Total number of location fixes accepted and persisted",
		},
	)

	LocationFixesRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_fixes_rejected_total",
			Help: "Total number of location fixes rejected before persistence",
		},
		[]string{"reason"}, // "validation", "unknown_device", "rate_limited"
	)

	// NATS Relay Metrics
	NATSMessagesPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_messages_published_total",
			Help: "Total number of location updates relayed to NATS",
		},
	)

	NATSPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Total number of failed NATS relay publishes",
		},
	)

	// Application Info
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordDBQuery records the duration and outcome of a database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request with its response status and latency.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPush records the outcome of a single member push during a publish.
func RecordPush(outcome string) {
	BroadcastPushes.WithLabelValues(outcome).Inc()
}

// RecordPublish records a completed room publish fan-out.
func RecordPublish(attempted int, duration time.Duration) {
	BroadcastPublishes.Inc()
	BroadcastRoomSize.Observe(float64(attempted))
	BroadcastPublishDuration.Observe(duration.Seconds())
}

// RecordEviction records a registry eviction with its cause.
func RecordEviction(reason string) {
	RegistryEvictions.WithLabelValues(reason).Inc()
}

// RecordSweep records a completed registry expiry sweep.
func RecordSweep(removed int, duration time.Duration) {
	RegistrySweepDuration.Observe(duration.Seconds())
	RegistrySweepRemoved.Add(float64(removed))
}
