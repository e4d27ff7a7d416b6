// Tracknest - IoT GPS Tracking and Real-Time Location Broadcast
// Copyright 2026 Tracknest contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tracknest/tracknest

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator returned different instances")
	}
}

type ingestRequest struct {
	DeviceCode string `validate:"required,device_code"`
	Lat        string `validate:"required,latitude"`
	Long       string `validate:"required,longitude"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := ingestRequest{
		DeviceCode: "DEV001",
		Lat:        "12.9716",
		Long:       "77.5946",
	}

	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid request, got: %v", err)
	}
}

func TestValidateStruct_MissingFields(t *testing.T) {
	req := ingestRequest{}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error for empty request")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	for _, field := range []string{"DeviceCode", "Lat", "Long"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("expected message to mention %s, got: %s", field, apiErr.Message)
		}
	}
}

func TestDeviceCodeValidation(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{"uppercase alphanumeric", "DEV001", true},
		{"all letters", "TRUCKALPHA", true},
		{"all digits", "8857", true},
		{"minimum length", "AB12", true},
		{"maximum length", "ABCDEFGH12345678", true},
		{"too short", "AB1", false},
		{"too long", "ABCDEFGH123456789", false},
		{"lowercase", "dev001", false},
		{"hyphen", "DEV-001", false},
		{"whitespace", "DEV 001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ingestRequest{
				DeviceCode: tt.code,
				Lat:        "0",
				Long:       "0",
			}
			err := ValidateStruct(&req)
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got: %v", tt.code, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be rejected", tt.code)
			}
		})
	}
}

func TestCoordinateValidation(t *testing.T) {
	tests := []struct {
		name  string
		lat   string
		long  string
		valid bool
	}{
		{"bangalore", "12.9716", "77.5946", true},
		{"equator origin", "0", "0", true},
		{"extreme north west", "90", "-180", true},
		{"extreme south east", "-90", "180", true},
		{"latitude overflow", "90.1", "0", false},
		{"latitude underflow", "-91", "0", false},
		{"longitude overflow", "0", "180.5", false},
		{"longitude underflow", "0", "-181", false},
		{"non numeric latitude", "north", "0", false},
		{"non numeric longitude", "0", "east", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ingestRequest{
				DeviceCode: "DEV001",
				Lat:        tt.lat,
				Long:       tt.long,
			}
			err := ValidateStruct(&req)
			if tt.valid && err != nil {
				t.Errorf("expected (%s, %s) valid, got: %v", tt.lat, tt.long, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected (%s, %s) to be rejected", tt.lat, tt.long)
			}
		})
	}
}

func TestOneofValidation(t *testing.T) {
	type roleRequest struct {
		Role string `validate:"required,oneof=admin viewer"`
	}

	if err := ValidateStruct(&roleRequest{Role: "admin"}); err != nil {
		t.Errorf("expected admin role valid, got: %v", err)
	}
	if err := ValidateStruct(&roleRequest{Role: "viewer"}); err != nil {
		t.Errorf("expected viewer role valid, got: %v", err)
	}

	err := ValidateStruct(&roleRequest{Role: "superuser"})
	if err == nil {
		t.Fatal("expected invalid role to be rejected")
	}
	if !strings.Contains(err.Error(), "one of") {
		t.Errorf("expected 'one of' in message, got: %s", err.Error())
	}
}

func TestRangeValidation(t *testing.T) {
	type pageRequest struct {
		Limit  int `validate:"gte=1,lte=1000"`
		Offset int `validate:"gte=0"`
	}

	if err := ValidateStruct(&pageRequest{Limit: 100, Offset: 0}); err != nil {
		t.Errorf("expected valid page request, got: %v", err)
	}

	err := ValidateStruct(&pageRequest{Limit: 5000, Offset: -1})
	if err == nil {
		t.Fatal("expected out-of-range page request to be rejected")
	}
	if len(err.Errors()) != 2 {
		t.Errorf("expected 2 field errors, got %d", len(err.Errors()))
	}
}

func TestNestedStructValidation(t *testing.T) {
	type point struct {
		Lat  string `validate:"required,latitude"`
		Long string `validate:"required,longitude"`
	}
	type envelope struct {
		DeviceCode string `validate:"required,device_code"`
		Position   point
	}

	valid := envelope{
		DeviceCode: "DEV001",
		Position:   point{Lat: "12.9", Long: "77.6"},
	}
	if err := ValidateStruct(&valid); err != nil {
		t.Errorf("expected nested struct valid, got: %v", err)
	}

	invalid := envelope{
		DeviceCode: "DEV001",
		Position:   point{Lat: "95", Long: "77.6"},
	}
	if err := ValidateStruct(&invalid); err == nil {
		t.Error("expected nested latitude error")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	req := ingestRequest{
		DeviceCode: "DEV001",
		Lat:        "95",
		Long:       "77.6",
	}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "latitude") {
		t.Errorf("expected latitude message, got: %s", apiErr.Message)
	}
	if apiErr.Details["field"] != "Lat" {
		t.Errorf("expected field detail Lat, got %v", apiErr.Details["field"])
	}
	if apiErr.Details["tag"] != "latitude" {
		t.Errorf("expected tag detail latitude, got %v", apiErr.Details["tag"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	req := ingestRequest{
		DeviceCode: "dev-001",
		Lat:        "95",
		Long:       "",
	}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("expected fields detail, got %T", apiErr.Details["fields"])
	}
	if len(fields) != 3 {
		t.Errorf("expected 3 field errors, got %d", len(fields))
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("expected joined messages, got: %s", apiErr.Message)
	}
}

func TestErrorMessages(t *testing.T) {
	req := ingestRequest{
		DeviceCode: "bad code",
		Lat:        "12.9",
		Long:       "77.6",
	}

	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "uppercase alphanumeric") {
		t.Errorf("expected device code message, got: %s", err.Error())
	}
}
