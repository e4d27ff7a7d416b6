// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a config that passes Validate.
func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	cfg.Security.AdminUsername = "admin"
	cfg.Security.AdminPassword = "password123"
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad timeout", func(c *Config) { c.Server.Timeout = 0 }, "server.timeout"},
		{"missing db path", func(c *Config) { c.Database.Path = "" }, "database.path"},
		{"bad registry backend", func(c *Config) { c.Registry.Backend = "redis" }, "registry.backend"},
		{"badger without path", func(c *Config) { c.Registry.Backend = "badger"; c.Registry.Path = "" }, "registry.path"},
		{"bad ttl", func(c *Config) { c.Registry.TTL = 0 }, "registry.ttl"},
		{"negative sweep", func(c *Config) { c.Registry.SweepInterval = -time.Second }, "registry.sweep_interval"},
		{"bad push timeout", func(c *Config) { c.Broadcast.PushTimeout = 0 }, "broadcast.push_timeout"},
		{"bad send buffer", func(c *Config) { c.Broadcast.SendBuffer = 0 }, "broadcast.send_buffer"},
		{"short jwt secret", func(c *Config) { c.Security.JWTSecret = "short" }, "jwt_secret"},
		{"missing admin", func(c *Config) { c.Security.AdminUsername = "" }, "admin_username"},
		{"short admin password", func(c *Config) { c.Security.AdminPassword = "short" }, "admin_password"},
		{"bad auth mode", func(c *Config) { c.Security.AuthMode = "basic" }, "auth_mode"},
		{"none in production", func(c *Config) {
			c.Security.AuthMode = "none"
			c.Server.Environment = "production"
		}, "auth_mode none"},
		{"bad ingest rate", func(c *Config) { c.Security.IngestRate = 0 }, "ingest_rate"},
		{"bad ingest burst", func(c *Config) { c.Security.IngestBurst = 0 }, "ingest_burst"},
		{"nats without url", func(c *Config) { c.NATS.Enabled = true; c.NATS.URL = "" }, "nats.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_AuthModeNoneInDevelopment(t *testing.T) {
	cfg := validConfig()
	cfg.Security.AuthMode = "none"
	cfg.Server.Environment = "development"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("auth_mode none should be allowed in development, got %v", err)
	}
}

func TestShouldWarnAboutCORS(t *testing.T) {
	cfg := validConfig()

	if !cfg.ShouldWarnAboutCORS() {
		t.Error("wildcard CORS with jwt auth should warn")
	}

	cfg.Security.CORSOrigins = []string{"https://example.com"}
	if cfg.ShouldWarnAboutCORS() {
		t.Error("specific origins should not warn")
	}

	cfg.Security.CORSOrigins = []string{"*"}
	cfg.Security.AuthMode = "none"
	if cfg.ShouldWarnAboutCORS() {
		t.Error("auth mode none should not warn")
	}
}

func TestIsDevelopment(t *testing.T) {
	cfg := validConfig()
	if !cfg.IsDevelopment() {
		t.Error("default environment should be development")
	}

	cfg.Server.Environment = "Production"
	if cfg.IsDevelopment() {
		t.Error("production environment reported as development")
	}
}
