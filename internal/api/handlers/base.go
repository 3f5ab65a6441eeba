// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package handlers provides the HTTP handlers for the API.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/pkg/validator"
)

// maxBodyBytes caps request bodies. The API only accepts small JSON payloads.
const maxBodyBytes = 1 << 20

// Envelope is the body of every successful response.
type Envelope map[string]any

// BaseHandler provides common functionality for all handlers.
type BaseHandler struct {
	logger *logger.Logger
}

// NewBaseHandler creates a new base handler.
func NewBaseHandler(log *logger.Logger) BaseHandler {
	if log == nil {
		log = logger.Nop()
	}
	return BaseHandler{logger: log}
}

// Success writes a {"status":"success"} envelope with the given status code.
// The extra fields are merged into the envelope.
func (h *BaseHandler) Success(w http.ResponseWriter, status int, fields Envelope) {
	body := Envelope{"status": "success"}
	for k, v := range fields {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encoding response", "error", err)
	}
}

// OK writes a 200 success envelope.
func (h *BaseHandler) OK(w http.ResponseWriter, fields Envelope) {
	h.Success(w, http.StatusOK, fields)
}

// Created writes a 201 success envelope.
func (h *BaseHandler) Created(w http.ResponseWriter, fields Envelope) {
	h.Success(w, http.StatusCreated, fields)
}

// Accepted writes a 202 success envelope.
func (h *BaseHandler) Accepted(w http.ResponseWriter, fields Envelope) {
	h.Success(w, http.StatusAccepted, fields)
}

// NoContent writes a 204 response with no body.
func (h *BaseHandler) NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error converts a service error into a fail envelope. Unexpected errors
// are logged before the generic 500 goes out.
func (h *BaseHandler) Error(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	if _, ok := apperrors.AsAppError(err); !ok {
		var resp *apierrors.Response
		if !errors.As(err, &resp) {
			h.logger.Error("unexpected error",
				"error", err,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", middleware.GetRequestID(r.Context()),
			)
		}
	}
	apierrors.WriteError(w, err)
}

// ParseJSON decodes and validates the request body. Validation failures
// come back as a 400 VALIDATION response carrying per-field messages.
func (h *BaseHandler) ParseJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apierrors.BadJSON()
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		return apierrors.BadJSON()
	}

	if err := validator.Validate(v); err != nil {
		return apierrors.Validation(validator.GetValidationErrors(err))
	}
	return nil
}

// ParseJSONLoose decodes without struct validation, for inputs whose
// validation happens in the service layer.
func (h *BaseHandler) ParseJSONLoose(r *http.Request, v any) error {
	if r.Body == nil {
		return apierrors.BadJSON()
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil && err != io.EOF {
		return apierrors.BadJSON()
	}
	return nil
}

// URLParam returns a URL parameter value.
func (h *BaseHandler) URLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// URLParamUUID returns a URL parameter parsed as a UUID.
func (h *BaseHandler) URLParamUUID(r *http.Request, key string) (uuid.UUID, error) {
	param := chi.URLParam(r, key)
	if param == "" {
		return uuid.Nil, apperrors.Validation(key + " is required")
	}
	id, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, apperrors.Validation("invalid " + key)
	}
	return id, nil
}

// QueryParam returns a query parameter value.
func (h *BaseHandler) QueryParam(r *http.Request, key string) string {
	return r.URL.Query().Get(key)
}

// QueryParamInt returns a query parameter as int, or the default.
func (h *BaseHandler) QueryParamInt(r *http.Request, key string, defaultValue int) int {
	param := r.URL.Query().Get(key)
	if param == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(param)
	if err != nil {
		return defaultValue
	}
	return val
}

// CurrentUser returns the authenticated user placed in context by the
// session guard.
func (h *BaseHandler) CurrentUser(r *http.Request) *models.User {
	return middleware.GetUserFromContext(r.Context())
}

// Pagination holds offset pagination parameters.
type Pagination struct {
	Page    int
	PerPage int
	Offset  int
}

// GetPagination extracts pagination parameters from the request, clamped
// to sane bounds.
func (h *BaseHandler) GetPagination(r *http.Request) Pagination {
	page := h.QueryParamInt(r, "page", 1)
	perPage := h.QueryParamInt(r, "per_page", 20)

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	return Pagination{Page: page, PerPage: perPage, Offset: (page - 1) * perPage}
}

// Logger returns the handler's logger.
func (h *BaseHandler) Logger() *logger.Logger {
	return h.logger
}
