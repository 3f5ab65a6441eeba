// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package middleware

import (
	"net/http"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
)

// RequireRole restricts a route to users holding one of the given roles.
// It must run after the session guard.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				apierrors.WriteError(w, apperrors.Unauthorized("you are not logged in"))
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				apierrors.WriteError(w, apperrors.Forbidden("you do not have permission to perform this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows only administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(models.RoleAdmin)(next)
}

// RequireStaff allows teachers and administrators.
func RequireStaff(next http.Handler) http.Handler {
	return RequireRole(models.RoleTeacher, models.RoleAdmin)(next)
}
