// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
)

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	// RequestLimit is the maximum number of requests allowed per window.
	RequestLimit int

	// WindowLength is the duration of the rate limit window.
	WindowLength time.Duration

	// KeyFunc extracts the limiter key from the request. Defaults to
	// per-IP limiting when nil.
	KeyFunc func(r *http.Request) (string, error)
}

// RateLimit returns a rate limiting middleware with the given configuration.
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	opts := []httprate.Option{
		httprate.WithLimitHandler(rateLimitHandler(config.WindowLength)),
	}
	if config.KeyFunc != nil {
		opts = append(opts, httprate.WithKeyFuncs(config.KeyFunc))
	}
	return httprate.Limit(config.RequestLimit, config.WindowLength, opts...)
}

// RateLimitByIP limits requests per client IP.
func RateLimitByIP(requestLimit int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: requestLimit,
		WindowLength: window,
	})
}

// RateLimitByUser limits requests per authenticated user, falling back to
// the client IP for anonymous requests.
func RateLimitByUser(requestLimit int, window time.Duration) func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{
		RequestLimit: requestLimit,
		WindowLength: window,
		KeyFunc: func(r *http.Request) (string, error) {
			if user := GetUserFromContext(r.Context()); user != nil {
				return "user:" + user.ID.String(), nil
			}
			return "ip:" + getRealIP(r), nil
		},
	})
}

// AuthRateLimit guards credential endpoints such as login and password
// reset. 10 attempts per minute per IP.
func AuthRateLimit() func(http.Handler) http.Handler {
	return RateLimitByIP(10, time.Minute)
}

// APIRateLimit is the standard limiter for authenticated API traffic.
func APIRateLimit() func(http.Handler) http.Handler {
	return RateLimitByUser(300, time.Minute)
}

func rateLimitHandler(window time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
		apierrors.Write(w, apierrors.RateLimited())
	}
}
