// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/services/auth"
)

type contextKey string

const (
	// UserContextKey is the context key for the authenticated user.
	UserContextKey contextKey = "user"

	// RequestIDContextKey is the context key for the request ID.
	RequestIDContextKey contextKey = "request_id"
)

const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)

// SessionStore is the subset of the user repository the session guard needs.
type SessionStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTwoFactorStatus(ctx context.Context, id uuid.UUID, status models.TwoFactorStatus) error
}

// SessionGuard authenticates requests with a Bearer access token and loads
// the current user into the request context.
type SessionGuard struct {
	codec *auth.TokenCodec
	store SessionStore
	log   *logger.Logger
}

// NewSessionGuard builds the session guard middleware.
func NewSessionGuard(codec *auth.TokenCodec, store SessionStore, log *logger.Logger) *SessionGuard {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionGuard{codec: codec, store: store, log: log.Named("session")}
}

// Authenticate verifies the access token, rejects sessions issued before the
// last password change, and stores the user in the context. A stale session
// also resets the user's two-factor verification so the next login has to
// complete the challenge again.
func (g *SessionGuard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := BearerToken(r)
		if tokenString == "" {
			apierrors.WriteError(w, apperrors.NewWithStatus(
				apperrors.CodeTokenMissing, "you are not logged in", http.StatusForbidden))
			return
		}

		claim, err := g.codec.Verify(tokenString, auth.TokenKindAccess)
		if err != nil {
			apierrors.WriteError(w, mapTokenError(err))
			return
		}

		user, err := g.store.GetByID(r.Context(), claim.UserID)
		if err != nil {
			if apperrors.IsNotFoundError(err) {
				apierrors.WriteError(w, apperrors.NotFound("user belonging to this session"))
				return
			}
			g.log.Error("loading session user", "error", err)
			apierrors.WriteError(w, err)
			return
		}

		if user.IsDeactivated() {
			apierrors.WriteError(w, apperrors.Forbidden("this account has been deactivated"))
			return
		}

		if user.TokenIssuedBeforePasswordChange(claim.IssuedAt) {
			if err := g.store.SetTwoFactorStatus(r.Context(), user.ID, models.TwoFactorNotVerified); err != nil {
				g.log.Error("resetting two-factor status for stale session",
					"user_id", user.ID, "error", err)
			}
			apierrors.WriteError(w, apperrors.NewWithStatus(
				apperrors.CodeSessionStale, "password was changed recently, please login again", http.StatusForbidden))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireTwoFactorVerified blocks users who enabled two-factor authentication
// but have not verified the current code yet. It must run after Authenticate.
func RequireTwoFactorVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUserFromContext(r.Context())
		if user == nil {
			apierrors.WriteError(w, apperrors.Unauthorized("you are not logged in"))
			return
		}
		if user.TwoFactorPending() {
			apierrors.WriteError(w, apperrors.NewWithStatus(
				apperrors.CodeTwoFactorRequired, "please verify your two-factor code first", http.StatusForbidden))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from the Authorization header. Tokens are
// only accepted with the Bearer scheme, never from query parameters, since
// URLs end up in logs and browser history.
func BearerToken(r *http.Request) string {
	header := r.Header.Get(AuthorizationHeader)
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}

func mapTokenError(err error) error {
	if errors.Is(err, auth.ErrTokenExpired) {
		return apperrors.NewWithStatus(
			apperrors.CodeTokenExpired, "your session has expired, please login again", http.StatusUnauthorized)
	}
	return apperrors.NewWithStatus(
		apperrors.CodeTokenInvalid, "invalid session token", http.StatusForbidden)
}

// GetUserFromContext retrieves the authenticated user from the context.
// Returns nil if the request was not authenticated.
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// MustGetUser retrieves the authenticated user and panics if absent. Use
// only behind the Authenticate middleware.
func MustGetUser(ctx context.Context) *models.User {
	user := GetUserFromContext(ctx)
	if user == nil {
		panic("middleware: user not found in context")
	}
	return user
}
