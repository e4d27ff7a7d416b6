// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tracknest/tracknest/internal/api"
	"github.com/tracknest/tracknest/internal/auth"
	"github.com/tracknest/tracknest/internal/broadcast"
	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/database"
	"github.com/tracknest/tracknest/internal/logging"
	"github.com/tracknest/tracknest/internal/models"
	"github.com/tracknest/tracknest/internal/registry"
	"github.com/tracknest/tracknest/internal/supervisor"
	"github.com/tracknest/tracknest/internal/supervisor/services"
	ws "github.com/tracknest/tracknest/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Tracknest with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("registry_backend", cfg.Registry.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Configuration loaded")

	// Initialize database
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	// Open the connection registry backend
	store, closeStore, err := openRegistryStore(&cfg.Registry)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open registry backend")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.Error().Err(err).Msg("Error closing registry backend")
		}
	}()

	manager := registry.NewManager(store, cfg.Registry.TTL)
	hub := ws.NewHub(manager, cfg.Broadcast.SendBuffer)
	dispatcher := broadcast.NewDispatcher(store, manager, hub, cfg.Broadcast.PushTimeout)

	var jwtManager *auth.JWTManager
	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")

		// First boot on an empty users table seeds the configured admin.
		if err := bootstrapAdminUser(context.Background(), db, cfg); err != nil {
			logging.Fatal().Err(err).Msg("Failed to bootstrap admin user")
		}
	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  All endpoints are publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("    - CI/CD testing environments")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use AUTH_MODE=none in production or on public networks!")
		logging.Warn().Msg("============================================================")
	}

	middleware := auth.NewMiddleware(
		jwtManager,
		cfg.Security.AuthMode,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
		cfg.Security.CORSOrigins,
		nil, // trusted proxies: direct exposure assumed, RealIP handles the rest
	)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used in isolated test environments!")
	}

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  This allows ANY website to make cross-origin requests to your API.")
		logging.Warn().Msg("  With authentication enabled, this creates a security vulnerability:")
		logging.Warn().Msg("  attackers can steal credentials via malicious websites.")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
		logging.Warn().Msg("============================================================")
	}

	handler := api.NewHandler(db, cfg, jwtManager, hub, dispatcher, manager)

	// Optional NATS relay (requires build with -tags nats)
	if cfg.NATS.Enabled {
		relay, err := ws.NewNATSRelay(cfg.NATS.URL, cfg.NATS.SubjectPrefix)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize NATS relay")
		}
		defer relay.Close()
		handler.SetRelay(relay)
		logging.Info().
			Str("url", cfg.NATS.URL).
			Str("subject_prefix", cfg.NATS.SubjectPrefix).
			Msg("NATS relay enabled")
	}

	chiMw := api.NewChiMiddlewareFromSecurity(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, middleware, chiMw)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	if cfg.Registry.SweepInterval > 0 {
		sweeper := registry.NewSweeper(store, cfg.Registry.SweepInterval)
		tree.AddDataService(services.NewSweeperService(sweeper))
		logging.Info().
			Dur("interval", cfg.Registry.SweepInterval).
			Msg("Registry sweeper added to supervisor tree")
	} else {
		logging.Info().Msg("Registry sweeper disabled (REGISTRY_SWEEP_INTERVAL=0)")
	}

	// Messaging layer services
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	logging.Info().Msg("WebSocket hub added to supervisor tree")

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// openRegistryStore opens the configured registry backend and returns the
// store alongside a close function for shutdown.
//
// The memory backend needs no cleanup; the badger backend owns an on-disk
// BadgerDB that must be closed so its value log is flushed.
func openRegistryStore(cfg *config.RegistryConfig) (registry.Store, func() error, error) {
	switch cfg.Backend {
	case "badger":
		badgerDB, err := registry.OpenBadger(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger registry at %s: %w", cfg.Path, err)
		}
		logging.Info().Str("path", cfg.Path).Msg("BadgerDB registry backend opened")
		return registry.NewBadgerStore(badgerDB), badgerDB.Close, nil
	default:
		logging.Info().Msg("In-memory registry backend selected")
		return registry.NewMemoryStore(), func() error { return nil }, nil
	}
}

// bootstrapAdminUser seeds the configured admin credentials on first boot.
// An existing users table is left untouched so password changes made through
// the API survive restarts.
func bootstrapAdminUser(ctx context.Context, db *database.DB, cfg *config.Config) error {
	count, err := db.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Security.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := &models.User{
		Username:     cfg.Security.AdminUsername,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	logging.Info().
		Str("username", cfg.Security.AdminUsername).
		Msg("Bootstrap admin user created")
	return nil
}
