// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

// CORSConfig contains cross-origin resource sharing options.
type CORSConfig struct {
	// AllowedOrigins lists origins cross-domain requests may come from.
	// "*" allows every origin. An origin may contain one wildcard,
	// e.g. https://*.example.edu.
	AllowedOrigins []string

	AllowedMethods []string

	AllowedHeaders []string

	ExposedHeaders []string

	// AllowCredentials permits cookies and Authorization headers on
	// cross-origin requests.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int
}

// DefaultCORSConfig returns a configuration suitable for a browser frontend
// served from the configured origins.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			HeaderRequestID,
		},
		ExposedHeaders: []string{
			HeaderRequestID,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// CORS returns a CORS middleware with the given configuration.
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
	})
}

// CORSFromOrigins builds a configuration from a comma-separated origin list,
// e.g. "https://portal.example.edu,https://admin.example.edu".
func CORSFromOrigins(origins string, credentials bool) CORSConfig {
	config := DefaultCORSConfig()

	if origins != "" && origins != "*" {
		parts := strings.Split(origins, ",")
		trimmed := make([]string, 0, len(parts))
		for _, o := range parts {
			if t := strings.TrimSpace(o); t != "" {
				trimmed = append(trimmed, t)
			}
		}
		if len(trimmed) > 0 {
			config.AllowedOrigins = trimmed
		}
	}
	if origins == "*" {
		config.AllowedOrigins = []string{"*"}
		// Credentials cannot be combined with a wildcard origin.
		credentials = false
	}

	config.AllowCredentials = credentials
	return config
}
