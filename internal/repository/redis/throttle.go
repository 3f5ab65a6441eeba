// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package redis

import (
	"context"
	"fmt"
	"time"
)

// AttemptThrottle limits repeated authentication attempts per scope and
// key using an INCR counter with a rolling window. The scope names the
// operation ("login", "forgot-password"); the key identifies the caller
// (email plus client IP).
type AttemptThrottle struct {
	client *Client
	limit  int64
	window time.Duration
}

// NewAttemptThrottle creates an attempt throttle. A non-positive limit
// disables throttling.
func NewAttemptThrottle(client *Client, limit int, window time.Duration) *AttemptThrottle {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &AttemptThrottle{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Allow records one attempt and reports whether the caller is still
// under the limit. The first attempt in a window starts the clock.
func (t *AttemptThrottle) Allow(ctx context.Context, scope, key string) (bool, error) {
	if t.limit <= 0 {
		return true, nil
	}

	redisKey := t.key(scope, key)
	rdb := t.client.Redis()

	count, err := rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("throttle incr: %w", err)
	}
	if count == 1 {
		if err := rdb.Expire(ctx, redisKey, t.window).Err(); err != nil {
			return false, fmt.Errorf("throttle expire: %w", err)
		}
	}
	return count <= t.limit, nil
}

// Reset clears the counter for a scope and key, used after a
// successful authentication.
func (t *AttemptThrottle) Reset(ctx context.Context, scope, key string) error {
	if err := t.client.Redis().Del(ctx, t.key(scope, key)).Err(); err != nil {
		return fmt.Errorf("throttle reset: %w", err)
	}
	return nil
}

// Remaining reports how many attempts are left in the current window.
func (t *AttemptThrottle) Remaining(ctx context.Context, scope, key string) (int64, error) {
	if t.limit <= 0 {
		return -1, nil
	}
	count, err := t.client.Redis().Get(ctx, t.key(scope, key)).Int64()
	if err != nil {
		// Missing key means no attempts yet.
		return t.limit, nil
	}
	if count >= t.limit {
		return 0, nil
	}
	return t.limit - count, nil
}

func (t *AttemptThrottle) key(scope, key string) string {
	return fmt.Sprintf("auth:attempt:%s:%s", scope, key)
}
