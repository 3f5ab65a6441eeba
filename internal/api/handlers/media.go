// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"context"
	"net/http"

	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// MediaURLSigner issues presigned download URLs for stored media.
type MediaURLSigner interface {
	PresignedURL(ctx context.Context, folder, name string) (string, error)
}

// MediaHandler redirects media requests to short-lived bucket URLs.
type MediaHandler struct {
	BaseHandler
	store MediaURLSigner
}

// NewMediaHandler creates the media handler.
func NewMediaHandler(store MediaURLSigner, log *logger.Logger) *MediaHandler {
	return &MediaHandler{
		BaseHandler: NewBaseHandler(log.Named("media")),
		store:       store,
	}
}

// Get handles GET /api/v1/media/{folder}/{file}. The response carries the
// presigned URL instead of the object so the API never proxies bytes.
func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	url, err := h.store.PresignedURL(r.Context(), h.URLParam(r, "folder"), h.URLParam(r, "file"))
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"url": url}})
}
