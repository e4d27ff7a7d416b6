// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package auth

import (
	"testing"
	"time"

	"github.com/tracknest/tracknest/internal/config"
	"github.com/tracknest/tracknest/internal/models"
)

func TestNewJWTManager(t *testing.T) {
	if _, err := NewJWTManager(testJWTConfig()); err != nil {
		t.Errorf("NewJWTManager() error = %v", err)
	}

	_, err := NewJWTManager(&config.SecurityConfig{JWTSecret: "", SessionTimeout: time.Hour})
	if err == nil {
		t.Error("NewJWTManager() should reject an empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager(testJWTConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	tests := []struct {
		name     string
		username string
		role     string
	}{
		{"fleet admin", "fleet-admin", models.RoleAdmin},
		{"dispatcher", "dispatcher", models.RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := manager.GenerateToken(tt.username, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			if token == "" {
				t.Fatal("GenerateToken() returned empty token")
			}

			claims, err := manager.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.Username != tt.username {
				t.Errorf("username = %q, want %q", claims.Username, tt.username)
			}
			if claims.Role != tt.role {
				t.Errorf("role = %q, want %q", claims.Role, tt.role)
			}
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	manager, err := NewJWTManager(testJWTConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	for _, token := range []string{"", "not_a_jwt", "aaa.bbb.ccc"} {
		claims, err := manager.ValidateToken(token)
		if err == nil {
			t.Errorf("ValidateToken(%q) expected error", token)
		}
		if claims != nil {
			t.Errorf("ValidateToken(%q) expected nil claims", token)
		}
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "issuer-secret-long-enough-for-signing-tokens",
		SessionTimeout: time.Hour,
	})
	verifier, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "different-secret-long-enough-for-signing-tokens",
		SessionTimeout: time.Hour,
	})

	token, err := issuer.GenerateToken("fleet-admin", models.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if claims, err := verifier.ValidateToken(token); err == nil || claims != nil {
		t.Error("ValidateToken() should reject a token signed with another secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	manager, _ := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "expiry-test-secret-long-enough-for-signing",
		SessionTimeout: -1 * time.Hour,
	})

	token, err := manager.GenerateToken("dispatcher", models.RoleViewer)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if claims, err := manager.ValidateToken(token); err == nil || claims != nil {
		t.Error("ValidateToken() should reject an expired token")
	}
}
