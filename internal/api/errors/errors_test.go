// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body is not JSON: %v", err)
	}
	return body
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, apperrors.NewWithStatus(apperrors.CodeSessionStale, "please login again", http.StatusForbidden))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["status"] != "fail" {
		t.Errorf("status field = %v, want fail", body["status"])
	}
	if body["code"] != apperrors.CodeSessionStale {
		t.Errorf("code = %v, want %s", body["code"], apperrors.CodeSessionStale)
	}
	if body["message"] != "please login again" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestWriteError_PlainErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.New("pq: connection refused on 10.0.0.5"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["message"] != "something went wrong" {
		t.Errorf("internal details leaked: %v", body["message"])
	}
	if body["code"] != apperrors.CodeInternal {
		t.Errorf("code = %v, want INTERNAL", body["code"])
	}
}

func TestWriteError_WrappedAppError(t *testing.T) {
	inner := apperrors.NotFound("user")
	wrapped := apperrors.Wrap(inner, apperrors.CodeInternal, "loading user")

	rec := httptest.NewRecorder()
	WriteError(rec, wrapped)

	// The outermost AppError wins.
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestValidation_CarriesFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Validation(map[string]string{"email": "must be a valid email address"}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	fields, ok := body["errors"].(map[string]any)
	if !ok {
		t.Fatalf("errors field missing: %v", body)
	}
	if fields["email"] != "must be a valid email address" {
		t.Errorf("errors.email = %v", fields["email"])
	}
}

func TestFromError_Nil(t *testing.T) {
	if FromError(nil) != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestFromError_PassthroughResponse(t *testing.T) {
	orig := NotFound("route not found")
	if got := FromError(orig); got != orig {
		t.Error("FromError should pass an existing Response through unchanged")
	}
}

func TestContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, Internal())
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}
