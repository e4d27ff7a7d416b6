// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds all application configuration loaded from environment variables
// and an optional YAML config file.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Registry  RegistryConfig  `koanf:"registry"`
	Broadcast BroadcastConfig `koanf:"broadcast"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
	NATS      NATSConfig      `koanf:"nats"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Bind address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8857)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings for fix and device persistence.
//
// Environment Variables:
//   - DUCKDB_PATH: Database file path (default: /data/tracknest.duckdb)
//   - DUCKDB_MAX_MEMORY: Memory limit (default: 1GB)
//   - DUCKDB_THREADS: Worker threads, 0 = NumCPU (default: 0)
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`
}

// RegistryConfig holds viewer connection registry settings.
//
// The registry records which websocket connections are watching which
// device. The memory backend is sufficient for a single process; the
// badger backend keeps entries on disk so a restart does not orphan
// room bookkeeping for connections that survive a proxy.
//
// Environment Variables:
//   - REGISTRY_BACKEND: memory or badger (default: memory)
//   - REGISTRY_PATH: BadgerDB directory for the badger backend (default: /data/registry)
//   - REGISTRY_TTL: Horizon after which an entry is considered stale (default: 24h)
//   - REGISTRY_SWEEP_INTERVAL: Physical cleanup cadence, 0 disables the sweeper (default: 1h)
type RegistryConfig struct {
	Backend       string        `koanf:"backend"`
	Path          string        `koanf:"path"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// BroadcastConfig holds location fan-out settings.
//
// Environment Variables:
//   - BROADCAST_PUSH_TIMEOUT: Per-viewer push deadline (default: 5s)
//   - BROADCAST_SEND_BUFFER: Per-connection outbound queue length (default: 64)
type BroadcastConfig struct {
	PushTimeout time.Duration `koanf:"push_timeout"`
	SendBuffer  int           `koanf:"send_buffer"`
}

// SecurityConfig holds authentication and rate limiting settings.
//
// Environment Variables:
//   - AUTH_MODE: jwt or none (default: jwt)
//   - JWT_SECRET: 32+ character signing secret (required for jwt mode)
//   - SESSION_TIMEOUT: Token lifetime (default: 24h)
//   - ADMIN_USERNAME / ADMIN_PASSWORD: Bootstrap operator credentials
//   - RATE_LIMIT_REQS / RATE_LIMIT_WINDOW: API rate limit (default: 100 per 1m)
//   - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - INGEST_RATE / INGEST_BURST: Per-device fix ingestion throttle (default: 10/s, burst 30)
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	SessionTimeout    time.Duration `koanf:"session_timeout"`
	AdminUsername     string        `koanf:"admin_username"`
	AdminPassword     string        `koanf:"admin_password"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	IngestRate        float64       `koanf:"ingest_rate"`
	IngestBurst       int           `koanf:"ingest_burst"`
}

// LoggingConfig holds log output settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json or console (default: json)
//   - LOG_CALLER: Include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// NATSConfig holds the optional NATS relay settings. The relay republishes
// every broadcast location update to a NATS subject so out-of-process
// consumers can follow fixes without holding a websocket. Requires a build
// with -tags nats.
//
// Environment Variables:
//   - NATS_ENABLED: Enable the relay (default: false)
//   - NATS_URL: Server URL (default: nats://127.0.0.1:4222)
//   - NATS_SUBJECT_PREFIX: Subject prefix, device code is appended (default: locations)
type NATSConfig struct {
	Enabled       bool   `koanf:"enabled"`
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}

// Validate checks the configuration for internally inconsistent or unsafe
// values. It is called by Load() after all layers are merged.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %v", c.Server.Timeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Registry.Backend {
	case "memory":
	case "badger":
		if c.Registry.Path == "" {
			return fmt.Errorf("registry.path is required for the badger backend")
		}
	default:
		return fmt.Errorf("registry.backend must be memory or badger, got %q", c.Registry.Backend)
	}
	if c.Registry.TTL <= 0 {
		return fmt.Errorf("registry.ttl must be positive, got %v", c.Registry.TTL)
	}
	if c.Registry.SweepInterval < 0 {
		return fmt.Errorf("registry.sweep_interval must not be negative, got %v", c.Registry.SweepInterval)
	}

	if c.Broadcast.PushTimeout <= 0 {
		return fmt.Errorf("broadcast.push_timeout must be positive, got %v", c.Broadcast.PushTimeout)
	}
	if c.Broadcast.SendBuffer < 1 {
		return fmt.Errorf("broadcast.send_buffer must be at least 1, got %d", c.Broadcast.SendBuffer)
	}

	switch c.Security.AuthMode {
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("security.jwt_secret must be at least 32 characters for jwt auth mode")
		}
		if c.Security.AdminUsername == "" || c.Security.AdminPassword == "" {
			return fmt.Errorf("security.admin_username and security.admin_password are required for jwt auth mode")
		}
		if len(c.Security.AdminPassword) < 8 {
			return fmt.Errorf("security.admin_password must be at least 8 characters")
		}
	case "none":
		if !c.IsDevelopment() {
			return fmt.Errorf("security.auth_mode none is only allowed with ENVIRONMENT=development")
		}
	default:
		return fmt.Errorf("security.auth_mode must be jwt or none, got %q", c.Security.AuthMode)
	}

	if c.Security.IngestRate <= 0 {
		return fmt.Errorf("security.ingest_rate must be positive, got %v", c.Security.IngestRate)
	}
	if c.Security.IngestBurst < 1 {
		return fmt.Errorf("security.ingest_burst must be at least 1, got %d", c.Security.IngestBurst)
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return fmt.Errorf("nats.url is required when the NATS relay is enabled")
	}

	return nil
}

// ShouldWarnAboutCORS reports whether the wildcard CORS origin is combined
// with enabled authentication, which allows any website to replay stored
// credentials against the API.
func (c *Config) ShouldWarnAboutCORS() bool {
	if c.Security.AuthMode == "none" {
		return false
	}
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
