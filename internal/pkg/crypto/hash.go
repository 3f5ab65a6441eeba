// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// bcryptCost is the cost factor for bcrypt hashing.
	// 12 provides a good balance between security and performance.
	bcryptCost = 12
)

// DummyPasswordHash is compared against when no account matches the
// submitted email, so lookup misses take as long as hash mismatches.
// Generated at init so the comparison runs the full bcrypt rounds
// rather than failing on a malformed hash.
var DummyPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("not-a-real-credential"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// CheckPassword compares a password with a bcrypt hash.
func CheckPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// SHA256 computes the SHA-256 hash of data and returns it hex-encoded.
func SHA256(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SHA256String computes the SHA-256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// DigestSecret digests an opaque secret (verification token, reset token,
// one-time code) for storage. Only the digest persists; the plain value
// leaves the system exactly once, by email.
func DigestSecret(plain string) string {
	return SHA256String(plain)
}

// CheckSecret compares a candidate secret with its stored digest using a
// constant-time comparison.
func CheckSecret(candidate, digest string) bool {
	computed := SHA256String(candidate)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}
