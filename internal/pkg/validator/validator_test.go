// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package validator

import (
	"testing"
)

func TestNew_ReturnsSingleton(t *testing.T) {
	v1 := New()
	v2 := New()
	if v1 != v2 {
		t.Error("New() should return the same instance")
	}
}

type signupPayload struct {
	Name               string `json:"name" validate:"required,min=3,max=50"`
	Email              string `json:"email" validate:"required,email"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,registration_number"`
	Password           string `json:"password" validate:"required,password_strength"`
}

func TestValidate_Valid(t *testing.T) {
	p := signupPayload{
		Name:               "Aisha Khan",
		Email:              "aisha@example.edu",
		RegistrationNumber: "2019-CS-373",
		Password:           "Str0ng#Pass",
	}
	if err := Validate(p); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestValidate_FieldErrors(t *testing.T) {
	p := signupPayload{
		Name:               "Al",
		Email:              "not-an-email",
		RegistrationNumber: "???",
		Password:           "weak",
	}
	err := Validate(p)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	fields := GetValidationErrors(err)
	for _, want := range []string{"name", "email", "registrationNumber", "password"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("expected error for field %q, got %v", want, fields)
		}
	}
}

func TestValidationErrors_KeyedByJSONTag(t *testing.T) {
	p := signupPayload{
		Name:               "Aisha Khan",
		Email:              "aisha@example.edu",
		RegistrationNumber: "",
		Password:           "Str0ng#Pass",
	}
	err := Validate(p)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	fields := GetValidationErrors(err)
	if fields["registrationNumber"] != "is required" {
		t.Errorf("registrationNumber message = %q, want %q", fields["registrationNumber"], "is required")
	}
}

func TestValidateVar(t *testing.T) {
	if err := ValidateVar("someone@example.edu", "required,email"); err != nil {
		t.Errorf("ValidateVar() error: %v", err)
	}
	if err := ValidateVar("nope", "email"); err == nil {
		t.Error("ValidateVar() should reject an invalid email")
	}
}

func TestRegistrationNumberTag(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"2019-CS-373", true},
		{"FA21-BSE-012", true},
		{"2019CS373", false},
		{"", false},
		{"a-b", false},
	}
	for _, tt := range tests {
		err := ValidateVar(tt.value, "registration_number")
		if tt.valid && err != nil {
			t.Errorf("ValidateVar(%q) should pass, got: %v", tt.value, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateVar(%q) should fail", tt.value)
		}
	}
}

func TestPasswordStrengthTag(t *testing.T) {
	if err := ValidateVar("Str0ng#Pass", "password_strength"); err != nil {
		t.Errorf("strong password rejected: %v", err)
	}
	if err := ValidateVar("weakpass", "password_strength"); err == nil {
		t.Error("weak password should fail")
	}
}

func TestValidationErrors_NilError(t *testing.T) {
	fields := ValidationErrors(nil)
	if len(fields) != 0 {
		t.Errorf("expected empty map for nil error, got %v", fields)
	}
}
