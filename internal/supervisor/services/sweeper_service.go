// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package services

import (
	"context"
)

// SweepRunner interface matches *registry.Sweeper's Run method.
//
// This interface allows the SweeperService to work with the sweeper
// without importing the registry package, avoiding circular dependencies.
//
// Satisfied by *registry.Sweeper from internal/registry/sweeper.go.
type SweepRunner interface {
	Run(ctx context.Context) error
}

// SweeperService wraps the registry sweeper as a supervised service.
//
// The sweeper's Run method already implements the suture.Service pattern,
// so this wrapper simply delegates to it and provides a name for logging.
//
// Example usage:
//
//	sweeper := registry.NewSweeper(store, cfg.Registry.SweepInterval)
//	svc := services.NewSweeperService(sweeper)
//	tree.AddDataService(svc)
type SweeperService struct {
	sweeper SweepRunner
	name    string
}

// NewSweeperService creates a new registry sweeper service wrapper.
func NewSweeperService(sweeper SweepRunner) *SweeperService {
	return &SweeperService{
		sweeper: sweeper,
		name:    "registry-sweeper",
	}
}

// Serve implements suture.Service.
//
// This method delegates to sweeper.Run which:
//  1. Deletes expired connection records on the configured interval
//  2. Returns ctx.Err() when the context is canceled
//
// Read paths filter expired entries regardless, so a crashed sweeper
// degrades storage reclamation only, never correctness.
func (s *SweeperService) Serve(ctx context.Context) error {
	return s.sweeper.Run(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *SweeperService) String() string {
	return s.name
}
