// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/models"
)

// newRequest builds a request with an optional JSON body, chi URL params
// and an authenticated user already placed in the context.
func newRequest(t *testing.T, method, target string, body any, params map[string]string, user *models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if user != nil {
		ctx = context.WithValue(ctx, middleware.UserContextKey, user)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return out
}

func responseCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rec)
	code, _ := body["code"].(string)
	return code
}

func testStudent() *models.User {
	return &models.User{
		ID:                 uuid.New(),
		Role:               models.RoleStudent,
		Name:               "Imran Khalid",
		Email:              "imran@campus.edu",
		RegistrationNumber: "2021-CS-042",
		Status:             models.AccountVerified,
	}
}

func testTeacher() *models.User {
	return &models.User{
		ID:     uuid.New(),
		Role:   models.RoleTeacher,
		Name:   "Dr. Sana Mir",
		Email:  "sana@campus.edu",
		Status: models.AccountVerified,
	}
}
