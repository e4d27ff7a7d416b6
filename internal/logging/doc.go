// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

// Package logging is tracknest's zerolog-based structured logging layer.
//
// Every component logs through the package-level helpers, which wrap a
// single global zerolog logger. Output is JSON by default for ingestion
// into log pipelines, or human-readable console format for development.
//
// Initialize once at startup, then log with structured fields:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("device_code", code).Msg("Location accepted")
//	logging.Error().Err(err).Str("room", room).Msg("Broadcast failed")
//
// Configuration comes from LOG_LEVEL (trace, debug, info, warn, error),
// LOG_FORMAT (json, console), and LOG_CALLER (true, false), or from a
// Config passed to Init.
//
// Log chains must end with .Msg() or .Send(); a chain without a
// terminator is silently dropped by zerolog.
//
// # Request correlation
//
// Correlation and request IDs travel on the context. Ctx and CtxWith
// return loggers that stamp those IDs on every event:
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Str("device_code", code).Msg("Sweep started")
//
// WithComponent and WithService build loggers with a fixed identity
// field for subsystems like the broadcast hub or the registry sweeper.
//
// # slog bridge
//
// The supervisor tree logs through sutureslog, which requires an
// slog.Logger. NewSlogLogger returns one backed by the same zerolog
// stream, so supervisor restarts show up alongside application logs.
//
// The global logger is guarded by a sync.RWMutex; all exported helpers
// are safe for concurrent use. Tests capture output with
// NewTestLogger(&buf).
package logging
