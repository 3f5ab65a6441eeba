// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package crypto

// Challenge pairs an opaque secret with the digest that gets persisted.
// The Plain value is delivered to the user out of band and never stored.
type Challenge struct {
	Plain  string
	Digest string
}

const (
	// challengeBytes sizes account-verification and password-reset
	// secrets: 32 random bytes, 64 hex characters on the wire.
	challengeBytes = 32

	// twoFactorBytes sizes the emailed one-time code: 3 random bytes,
	// 6 uppercase hex characters.
	twoFactorBytes = 3
)

// NewVerificationChallenge creates the secret embedded in the
// account-verification email link.
func NewVerificationChallenge() (Challenge, error) {
	return newHexChallenge(challengeBytes)
}

// NewResetChallenge creates the secret embedded in the password-reset
// email link. The caller attaches the expiry window.
func NewResetChallenge() (Challenge, error) {
	return newHexChallenge(challengeBytes)
}

// NewTwoFactorCode creates the short uppercase code emailed during a
// two-factor login.
func NewTwoFactorCode() (Challenge, error) {
	plain, err := RandomHexUpper(twoFactorBytes)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{Plain: plain, Digest: DigestSecret(plain)}, nil
}

func newHexChallenge(n int) (Challenge, error) {
	plain, err := RandomHex(n)
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{Plain: plain, Digest: DigestSecret(plain)}, nil
}
