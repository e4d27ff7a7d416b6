// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

// Package config provides centralized configuration management using Koanf v2.
//
// Configuration is loaded from three layered sources, highest priority last:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (HTTP_PORT, REGISTRY_BACKEND, JWT_SECRET, ...)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load configuration")
//	}
//	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
//
// # Sections
//
//   - Server: HTTP bind address, port, timeouts, environment mode
//   - Database: DuckDB file path and resource limits
//   - Registry: Viewer connection registry backend (memory or badger), TTL, sweep
//   - Broadcast: Per-viewer push timeout and outbound queue length
//   - Security: Auth mode, JWT secret, rate limits, CORS, ingest throttle
//   - Logging: Level, format, caller info
//   - NATS: Optional location relay (build with -tags nats)
//
// # Example config.yaml
//
//	server:
//	  port: 8857
//	registry:
//	  backend: badger
//	  path: /data/registry
//	security:
//	  auth_mode: jwt
//	  jwt_secret: "change-me-to-a-32-plus-character-secret"
//	  admin_username: admin
//	  admin_password: secure-password
//
// Validation runs at load time; a config that fails validation never
// reaches the rest of the application.
package config
