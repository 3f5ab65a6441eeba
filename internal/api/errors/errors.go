// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package errors renders API error responses. Every failure leaves the
// server as a {"status":"fail"} envelope with a machine-readable code,
// so handlers never hand-roll error JSON.
package errors

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
)

// Response is the envelope returned for every failed request.
type Response struct {
	Status  string            `json:"status"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`

	// HTTPStatus is the status code to write. Not serialized.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (r *Response) Error() string {
	return r.Message
}

// New builds a Response with an explicit HTTP status.
func New(status int, code, message string) *Response {
	return &Response{
		Status:     "fail",
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// WithFields attaches per-field validation messages.
func (r *Response) WithFields(fields map[string]string) *Response {
	r.Errors = fields
	return r
}

// Write serializes the response to w.
func Write(w http.ResponseWriter, resp *Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(resp.HTTPStatus)
	json.NewEncoder(w).Encode(resp)
}

// WriteError converts any error to a fail envelope and writes it.
func WriteError(w http.ResponseWriter, err error) {
	Write(w, FromError(err))
}

// FromError converts any error into a Response. AppError values keep
// their code and status; everything else becomes a 500 INTERNAL with
// a generic message so internals never leak to clients.
func FromError(err error) *Response {
	if err == nil {
		return nil
	}

	if resp, ok := err.(*Response); ok {
		return resp
	}

	if appErr, ok := apperrors.AsAppError(err); ok {
		code := appErr.Code
		if code == "" {
			code = apperrors.CodeInternal
		}
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		message := appErr.Message
		if message == "" {
			message = "something went wrong"
		}
		return New(status, code, message)
	}

	return New(http.StatusInternalServerError, apperrors.CodeInternal, "something went wrong")
}

// Validation returns a 400 VALIDATION response carrying per-field messages.
func Validation(fields map[string]string) *Response {
	return New(http.StatusBadRequest, apperrors.CodeValidation, "invalid input data").WithFields(fields)
}

// BadJSON returns a 400 response for unparseable request bodies.
func BadJSON() *Response {
	return New(http.StatusBadRequest, apperrors.CodeValidation, "invalid request body")
}

// NotFound returns a 404 response for an unknown route or resource.
func NotFound(message string) *Response {
	if message == "" {
		message = "resource not found"
	}
	return New(http.StatusNotFound, apperrors.CodeNotFound, message)
}

// MethodNotAllowed returns a 405 response.
func MethodNotAllowed() *Response {
	return New(http.StatusMethodNotAllowed, apperrors.CodeValidation, "method not allowed")
}

// RateLimited returns a 429 response.
func RateLimited() *Response {
	return New(http.StatusTooManyRequests, "RATE_LIMITED", "too many requests, please try again later")
}

// Internal returns a 500 response with a generic message.
func Internal() *Response {
	return New(http.StatusInternalServerError, apperrors.CodeInternal, "something went wrong")
}
