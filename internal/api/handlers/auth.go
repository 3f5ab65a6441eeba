// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/models"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/repository/redis"
	"github.com/campuskit/campuskit/internal/services/auth"
)

// AuthHandler serves the account lifecycle routes: signup, login,
// verification, password recovery, refresh and two-factor.
type AuthHandler struct {
	BaseHandler
	service  *auth.Service
	throttle *redis.AttemptThrottle
}

// NewAuthHandler creates the auth handler. The throttle is optional, a nil
// throttle disables per-identity attempt limiting.
func NewAuthHandler(service *auth.Service, throttle *redis.AttemptThrottle, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(log.Named("auth")),
		service:     service,
		throttle:    throttle,
	}
}

// allowAttempt consults the redis attempt counter for a credential scope.
// The counter is keyed by email and client IP so a single identity cannot
// be brute-forced from one address. Redis being down fails open, login
// availability wins over throttling.
func (h *AuthHandler) allowAttempt(r *http.Request, scope, email string) bool {
	if h.throttle == nil {
		return true
	}
	ok, err := h.throttle.Allow(r.Context(), scope, attemptKey(r, email))
	if err != nil {
		h.Logger().Warn("attempt throttle unavailable", "scope", scope, "error", err)
		return true
	}
	return ok
}

// rejectThrottled answers a denied attempt with 429 and reports the
// remaining budget for the window in X-RateLimit-Remaining.
func (h *AuthHandler) rejectThrottled(w http.ResponseWriter, r *http.Request, scope, email string) {
	if remaining, err := h.throttle.Remaining(r.Context(), scope, attemptKey(r, email)); err == nil {
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	}
	h.Error(w, r, apierrors.RateLimited())
}

func (h *AuthHandler) resetAttempts(r *http.Request, scope, email string) {
	if h.throttle == nil {
		return
	}
	if err := h.throttle.Reset(r.Context(), scope, attemptKey(r, email)); err != nil {
		h.Logger().Warn("resetting attempt counter", "scope", scope, "error", err)
	}
}

func attemptKey(r *http.Request, email string) string {
	return strings.ToLower(strings.TrimSpace(email)) + ":" + middleware.ClientIP(r)
}

func sessionEnvelope(result *auth.LoginResult) Envelope {
	env := Envelope{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"data":         Envelope{"user": result.User},
	}
	if result.TwoFactorPending {
		env["twoFactorRequired"] = true
	}
	return env
}

// Signup handles POST /api/v1/users/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var input models.SignupInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	result, err := h.service.Signup(r.Context(), input)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, sessionEnvelope(result))
}

// Login handles POST /api/v1/users/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input models.LoginInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if !h.allowAttempt(r, "login", input.Email) {
		h.rejectThrottled(w, r, "login", input.Email)
		return
	}

	result, err := h.service.Login(r.Context(), input)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.resetAttempts(r, "login", input.Email)
	h.OK(w, sessionEnvelope(result))
}

// VerifyAccount handles GET /api/v1/users/verifyAccount/{verifyToken}.
func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.VerifyAccount(r.Context(), h.URLParam(r, "verifyToken"))
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"message": "your account has been verified",
		"data":    Envelope{"user": user},
	})
}

// ForgotPassword handles POST /api/v1/users/forgotPassword.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input models.ForgotPasswordInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if !h.allowAttempt(r, "forgot-password", input.Email) {
		h.rejectThrottled(w, r, "forgot-password", input.Email)
		return
	}

	if err := h.service.ForgotPassword(r.Context(), input.Email); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "a reset token has been sent to your email"})
}

// ResetPassword handles PATCH /api/v1/users/resetPassword/{resetToken}.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var input models.ResetPasswordInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if _, err := h.service.ResetPassword(r.Context(), h.URLParam(r, "resetToken"), input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Accepted(w, Envelope{"message": "your password has been reset, please login again"})
}

// Refresh handles PATCH /api/v1/users/verifyRefreshToken. The refresh token
// travels in the body, not the Authorization header.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var input models.RefreshInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	result, err := h.service.Refresh(r.Context(), input.RefreshToken)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
	})
}

// ChangePassword handles POST /api/v1/users/updatePassword.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var input models.ChangePasswordInput
	if err := h.ParseJSONLoose(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), h.CurrentUser(r), input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Accepted(w, Envelope{"message": "your password has been updated, please login again"})
}

// EnableTwoFactor handles PATCH /api/v1/users/enableTwoFactorAuthentication.
// An empty body means enable; a body with {"enabled":false} switches it off.
func (h *AuthHandler) EnableTwoFactor(w http.ResponseWriter, r *http.Request) {
	input := models.TwoFactorToggleInput{Enabled: true}
	if r.ContentLength > 0 {
		if err := h.ParseJSONLoose(r, &input); err != nil {
			h.Error(w, r, err)
			return
		}
	}

	if err := h.service.SetTwoFactor(r.Context(), h.CurrentUser(r), input.Enabled); err != nil {
		h.Error(w, r, err)
		return
	}

	message := "two-factor authentication enabled"
	if !input.Enabled {
		message = "two-factor authentication disabled"
	}
	h.OK(w, Envelope{"message": message})
}

// RegenerateCode handles GET /api/v1/users/generateNewCode.
func (h *AuthHandler) RegenerateCode(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RegenerateTwoFactorCode(r.Context(), h.CurrentUser(r)); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "a new code has been sent to your email"})
}

// VerifyTwoFactorCode handles PATCH and GET /api/v1/users/oneTimeToken/{token}.
func (h *AuthHandler) VerifyTwoFactorCode(w http.ResponseWriter, r *http.Request) {
	if err := h.service.VerifyTwoFactorCode(r.Context(), h.CurrentUser(r), h.URLParam(r, "token")); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "two-factor code verified"})
}
