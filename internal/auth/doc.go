// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

/*
Package auth provides authentication, authorization, and security middleware.

This package implements JWT authentication, per-IP rate limiting, CORS, and
security headers for the Tracknest API. It sits between incoming HTTP
requests and the handlers.

Key Components:

  - JWTManager: Token generation and validation using HMAC-SHA256
  - Middleware: HTTP middleware for authentication, role checks, rate
    limiting, CORS, and security headers
  - RateLimiter: Token bucket rate limiter per client IP

Authentication Modes:

The application supports two modes (configured via SECURITY_AUTH_MODE):

 1. "jwt" (default): token-based authentication with configurable expiry.
    Tokens are accepted from the Authorization header (Bearer scheme) or
    an HTTP-only "token" cookie. Login issues tokens after verifying the
    bcrypt password hash stored for the user.

 2. "none": every request passes through unauthenticated. Only permitted
    when ENVIRONMENT=development; config validation rejects it otherwise.

Roles:

Claims carry a role ("admin" or "viewer"). RequireRole gates handlers on
a role; admins pass every role check. Device provisioning requires admin,
watching locations requires viewer.

Usage:

	jwtManager, err := auth.NewJWTManager(cfg.Security)
	if err != nil {
	    return err
	}
	mw := auth.NewMiddleware(jwtManager, cfg.Security.AuthMode,
	    cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow,
	    cfg.Security.RateLimitDisabled, cfg.Security.CORSOrigins, nil)

	r.Get("/api/v1/devices", mw.Authenticate(listDevices))
	r.Post("/api/v1/devices", mw.RequireRole("admin", createDevice))

Rate limiting uses golang.org/x/time/rate with one limiter per client IP
and a background sweep of limiters idle for over an hour. Client IPs are
taken from X-Forwarded-For or X-Real-IP only when the peer is a
configured trusted proxy.
*/
package auth
