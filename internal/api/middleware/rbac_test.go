// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/models"
)

func requestAs(role models.Role) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	user := &models.User{ID: uuid.New(), Role: role}
	return req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		allowed []models.Role
		role    models.Role
		want    int
	}{
		{"teacher on teacher route", []models.Role{models.RoleTeacher}, models.RoleTeacher, http.StatusOK},
		{"student on teacher route", []models.Role{models.RoleTeacher}, models.RoleStudent, http.StatusForbidden},
		{"admin on staff route", []models.Role{models.RoleTeacher, models.RoleAdmin}, models.RoleAdmin, http.StatusOK},
		{"student on staff route", []models.Role{models.RoleTeacher, models.RoleAdmin}, models.RoleStudent, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireRole(tt.allowed...)(okHandler()).ServeHTTP(rec, requestAs(tt.role))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRole_Unauthenticated(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	RequireRole(models.RoleAdmin)(okHandler()).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a user in context", rec.Code)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("request ID missing from context")
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header %q does not match context value %q", got, seen)
	}
}

func TestRequestID_HonorsIncoming(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-id-42")

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	})
	RequestID(next).ServeHTTP(httptest.NewRecorder(), req)

	if seen != "upstream-id-42" {
		t.Errorf("request ID = %q, want upstream value", seen)
	}
}
