// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking and
Prometheus metrics integration. These components work alongside the
authentication middleware to create a complete middleware stack for HTTP
request processing.

Key Components:

  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Middleware Stack:

The typical middleware stack for an endpoint is:

	http.HandleFunc("/api/v1/endpoint",
	    auth.CORS(                            // Layer 1: CORS headers
	        auth.RateLimit(                   // Layer 2: Rate limiting
	            middleware.PrometheusMetrics( // Layer 3: Metrics
	                middleware.RequestID(     // Layer 4: Request tracking
	                    handler,              // Layer 5: Business logic
	                ),
	            ),
	        ),
	    ),
	)

Usage Example - Request ID:

	http.HandleFunc("/api/v1/locations",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    logging.Info().Str("request_id", requestID).Msg("processing request")
	}

The middleware honors an incoming X-Request-ID header from upstream proxies
and generates a UUID v4 when none is present. The ID is echoed back in the
response header and propagated through the logging context together with a
fresh correlation ID.

Usage Example - Prometheus Metrics:

	http.HandleFunc("/api/v1/devices",
	    middleware.PrometheusMetrics(handler),
	)

The metrics middleware records request counts and latency histograms labeled
by method, path and status code, and tracks the in-flight request gauge.

Thread Safety:

All middleware components are thread-safe:
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/auth: Authentication middleware
  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
