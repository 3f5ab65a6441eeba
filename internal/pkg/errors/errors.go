// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package errors provides the application error taxonomy. Handlers map
// AppError values onto the HTTP wire envelope; services return them so
// transport code never inspects raw driver errors.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes used across the application.
const (
	CodeValidation         = "VALIDATION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenExpired       = "ACCESS_TOKEN_EXPIRED"
	CodeSessionStale       = "SESSION_STALE"
	CodeTwoFactorRequired  = "TWO_FACTOR_REQUIRED"
	CodeCodeMissing        = "CODE_MISSING"
	CodeCodeInvalid        = "CODE_INVALID"
	CodeCodeExpired        = "CODE_EXPIRED"
	CodeChallengeInvalid   = "CHALLENGE_INVALID"
	CodeChallengeExpired   = "CHALLENGE_EXPIRED"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodePasswordMismatch   = "PASSWORD_MISMATCH"
	CodeNotFound           = "NOT_FOUND"
	CodeAlreadyExists      = "ALREADY_EXISTS"
	CodeConflict           = "CONFLICT"
	CodeUpstreamDelivery   = "UPSTREAM_DELIVERY"
	CodeInternal           = "INTERNAL"
)

// AppError is an application error with a stable code and an HTTP status
// the API layer can translate directly.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with the default 500 status.
func New(code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusInternalServerError}
}

// Newf creates an AppError with a formatted message.
func Newf(code, format string, args ...any) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// NewWithStatus creates an AppError with an explicit HTTP status.
func NewWithStatus(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// Wrap wraps an underlying error into an AppError.
func Wrap(err error, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: http.StatusInternalServerError, Err: err}
}

// WrapWithStatus wraps an underlying error with an explicit HTTP status.
func WrapWithStatus(err error, code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
}

// Validation creates a 400 VALIDATION error.
func Validation(message string) *AppError {
	return NewWithStatus(CodeValidation, message, http.StatusBadRequest)
}

// Unauthorized creates a 401 UNAUTHORIZED error.
func Unauthorized(message string) *AppError {
	return NewWithStatus(CodeUnauthorized, message, http.StatusUnauthorized)
}

// Forbidden creates a 403 FORBIDDEN error.
func Forbidden(message string) *AppError {
	return NewWithStatus(CodeForbidden, message, http.StatusForbidden)
}

// NotFound creates a 404 NOT_FOUND error for the named resource.
func NotFound(resource string) *AppError {
	return NewWithStatus(CodeNotFound, resource+" not found", http.StatusNotFound)
}

// AlreadyExists creates a 409 ALREADY_EXISTS error.
func AlreadyExists(message string) *AppError {
	return NewWithStatus(CodeAlreadyExists, message, http.StatusConflict)
}

// Conflict creates a 409 CONFLICT error.
func Conflict(message string) *AppError {
	return NewWithStatus(CodeConflict, message, http.StatusConflict)
}

// Internal creates a 500 INTERNAL error wrapping err.
func Internal(err error) *AppError {
	return WrapWithStatus(err, CodeInternal, "internal server error", http.StatusInternalServerError)
}

// UpstreamDelivery creates a 502 error for a failed outbound delivery,
// typically email.
func UpstreamDelivery(err error) *AppError {
	return WrapWithStatus(err, CodeUpstreamDelivery, "failed to deliver message", http.StatusBadGateway)
}

// AsAppError extracts an AppError from err's chain, if any.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFoundError reports whether err carries the NOT_FOUND code.
func IsNotFoundError(err error) bool {
	return HasCode(err, CodeNotFound)
}

// HasCode reports whether err carries the given application code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
