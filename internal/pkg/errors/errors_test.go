// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package errors

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error_WithWrapped(t *testing.T) {
	inner := fmt.Errorf("db connection failed")
	ae := Wrap(inner, CodeInternal, "service error")

	got := ae.Error()
	if !strings.Contains(got, CodeInternal) {
		t.Errorf("Error() missing code, got: %s", got)
	}
	if !strings.Contains(got, "service error") {
		t.Errorf("Error() missing message, got: %s", got)
	}
	if !strings.Contains(got, "db connection failed") {
		t.Errorf("Error() missing wrapped error, got: %s", got)
	}
}

func TestAppError_Error_WithoutWrapped(t *testing.T) {
	ae := New(CodeNotFound, "user not found")

	got := ae.Error()
	if !strings.Contains(got, CodeNotFound) {
		t.Errorf("Error() missing code, got: %s", got)
	}
	if !strings.Contains(got, "user not found") {
		t.Errorf("Error() missing message, got: %s", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("original error")
	ae := Wrap(inner, CodeInternal, "wrapped")

	if ae.Unwrap() != inner {
		t.Error("Unwrap() did not return the wrapped error")
	}
}

func TestAppError_Unwrap_Nil(t *testing.T) {
	ae := New(CodeInternal, "no inner")
	if ae.Unwrap() != nil {
		t.Error("Unwrap() should return nil when no wrapped error")
	}
}

func TestNew_DefaultStatus(t *testing.T) {
	ae := New(CodeValidation, "bad input")

	if ae.Code != CodeValidation {
		t.Errorf("Code = %q, want %q", ae.Code, CodeValidation)
	}
	if ae.Message != "bad input" {
		t.Errorf("Message = %q, want %q", ae.Message, "bad input")
	}
	if ae.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("HTTPStatus = %d, want %d", ae.HTTPStatus, http.StatusInternalServerError)
	}
}

func TestNewf(t *testing.T) {
	ae := Newf(CodeValidation, "field %s is %s", "email", "invalid")
	want := "field email is invalid"
	if ae.Message != want {
		t.Errorf("Message = %q, want %q", ae.Message, want)
	}
}

func TestWrapWithStatus(t *testing.T) {
	inner := fmt.Errorf("timeout")
	ae := WrapWithStatus(inner, CodeUpstreamDelivery, "upstream failed", http.StatusBadGateway)

	if ae.Err != inner {
		t.Error("WrapWithStatus() did not preserve inner error")
	}
	if ae.HTTPStatus != http.StatusBadGateway {
		t.Errorf("HTTPStatus = %d, want %d", ae.HTTPStatus, http.StatusBadGateway)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"Validation", Validation("bad"), CodeValidation, http.StatusBadRequest},
		{"Unauthorized", Unauthorized("no token"), CodeUnauthorized, http.StatusUnauthorized},
		{"Forbidden", Forbidden("no access"), CodeForbidden, http.StatusForbidden},
		{"NotFound", NotFound("user"), CodeNotFound, http.StatusNotFound},
		{"AlreadyExists", AlreadyExists("email taken"), CodeAlreadyExists, http.StatusConflict},
		{"Conflict", Conflict("duplicate"), CodeConflict, http.StatusConflict},
		{"Internal", Internal(fmt.Errorf("crash")), CodeInternal, http.StatusInternalServerError},
		{"UpstreamDelivery", UpstreamDelivery(fmt.Errorf("smtp down")), CodeUpstreamDelivery, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", tt.err.Code, tt.wantCode)
			}
			if tt.err.HTTPStatus != tt.wantStatus {
				t.Errorf("HTTPStatus = %d, want %d", tt.err.HTTPStatus, tt.wantStatus)
			}
		})
	}
}

func TestNotFound_MessageContainsResource(t *testing.T) {
	ae := NotFound("degree")
	if !strings.Contains(ae.Message, "degree") {
		t.Errorf("Message should contain resource name, got: %s", ae.Message)
	}
}

func TestAsAppError_Direct(t *testing.T) {
	ae := NotFound("user")
	got, ok := AsAppError(ae)
	if !ok {
		t.Fatal("AsAppError() should return true for AppError")
	}
	if got.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", got.Code, CodeNotFound)
	}
}

func TestAsAppError_Wrapped(t *testing.T) {
	ae := NotFound("user")
	wrapped := fmt.Errorf("layer: %w", ae)

	got, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError() should find AppError in chain")
	}
	if got.Code != CodeNotFound {
		t.Errorf("Code = %q, want %q", got.Code, CodeNotFound)
	}
}

func TestAsAppError_PlainError(t *testing.T) {
	_, ok := AsAppError(fmt.Errorf("plain error"))
	if ok {
		t.Error("AsAppError() should return false for plain error")
	}
}

func TestIsNotFoundError(t *testing.T) {
	if !IsNotFoundError(NotFound("user")) {
		t.Error("IsNotFoundError() should return true for NotFound")
	}
	if IsNotFoundError(fmt.Errorf("something else")) {
		t.Error("IsNotFoundError() should return false for unrelated error")
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	ae := NewWithStatus(CodeSessionStale, "please login again", http.StatusForbidden)
	wrapped := fmt.Errorf("guard: %w", ae)

	if !HasCode(wrapped, CodeSessionStale) {
		t.Error("HasCode() should find SESSION_STALE in chain")
	}
	if HasCode(wrapped, CodeTokenInvalid) {
		t.Error("HasCode() should not match a different code")
	}
}
