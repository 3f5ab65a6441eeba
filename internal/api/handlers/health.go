// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) error

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	BaseHandler
	version string

	mu       sync.RWMutex
	checkers map[string]HealthChecker
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(version string, log *logger.Logger) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		BaseHandler: NewBaseHandler(log.Named("health")),
		version:     version,
		checkers:    make(map[string]HealthChecker),
	}
}

// Register adds a named dependency check to the readiness probe.
func (h *HealthHandler) Register(name string, checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// Live handles GET /healthz. The process is up, nothing else is claimed.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	h.OK(w, Envelope{"version": h.version})
}

// Ready handles GET /readyz, probing every registered dependency with a
// short per-check deadline.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	checkers := make(map[string]HealthChecker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	results := make(map[string]string, len(checkers))
	healthy := true
	for name, check := range checkers {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			healthy = false
		} else {
			results[name] = "ok"
		}
		cancel()
	}

	if !healthy {
		h.Error(w, r, apierrors.New(http.StatusServiceUnavailable, "NOT_READY", "one or more dependencies are unavailable").
			WithFields(results))
		return
	}
	h.OK(w, Envelope{
		"version": h.version,
		"checks":  results,
	})
}
