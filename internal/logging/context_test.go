// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	if id := GenerateCorrelationID(); len(id) != 8 {
		t.Errorf("correlation ID length = %d, want 8", len(id))
	}
	if GenerateCorrelationID() == GenerateCorrelationID() {
		t.Error("correlation IDs should be unique")
	}
}

func TestCorrelationIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("empty context yielded correlation ID %q", id)
	}

	ctx = ContextWithCorrelationID(ctx, "ingest-7f3a")
	if id := CorrelationIDFromContext(ctx); id != "ingest-7f3a" {
		t.Errorf("CorrelationIDFromContext() = %q, want ingest-7f3a", id)
	}

	fresh := ContextWithNewCorrelationID(context.Background())
	if id := CorrelationIDFromContext(fresh); len(id) != 8 {
		t.Errorf("generated correlation ID length = %d, want 8", len(id))
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	if id := RequestIDFromContext(context.Background()); id != "" {
		t.Errorf("empty context yielded request ID %q", id)
	}

	ctx := ContextWithRequestID(context.Background(), "req-location-update")
	if id := RequestIDFromContext(ctx); id != "req-location-update" {
		t.Errorf("RequestIDFromContext() = %q", id)
	}
}

func TestCtxCarriesIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	ctx := ContextWithCorrelationID(context.Background(), "bcast-91ac")
	ctx = ContextWithRequestID(ctx, "req-location-update")

	Ctx(ctx).Info().Str("deviceCode", "TRACK-001").Msg("location accepted")

	output := buf.String()
	for _, want := range []string{"bcast-91ac", "req-location-update", "TRACK-001"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q: %s", want, output)
		}
	}
}

func TestCtx_EmptyContextAddsNothing(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	Ctx(context.Background()).Info().Msg("no identifiers")

	output := buf.String()
	if strings.Contains(output, "correlation_id") || strings.Contains(output, "request_id") {
		t.Errorf("expected no identifier fields: %s", output)
	}
}

func TestCtxWith(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	ctx := ContextWithCorrelationID(context.Background(), "sweep-22b1")
	logger := CtxWith(ctx).Str("room", "room:TRACK-001").Logger()
	logger.Info().Msg("sweep pass")

	output := buf.String()
	if !strings.Contains(output, "sweep-22b1") || !strings.Contains(output, "room:TRACK-001") {
		t.Errorf("expected correlation ID and room in output: %s", output)
	}
}

func TestWithComponentAndService(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	componentLogger := WithComponent("broadcast")
	componentLogger.Info().Msg("dispatch started")
	if !strings.Contains(buf.String(), "broadcast") {
		t.Errorf("expected component in output: %s", buf.String())
	}

	buf.Reset()
	serviceLogger := WithService("registry-sweeper")
	serviceLogger.Info().Msg("sweep scheduled")
	if !strings.Contains(buf.String(), "registry-sweeper") {
		t.Errorf("expected service in output: %s", buf.String())
	}
}
