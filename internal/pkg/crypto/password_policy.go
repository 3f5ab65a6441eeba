// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package crypto

import (
	"fmt"
	"unicode"
)

// PasswordPolicy describes the rules a candidate password must satisfy.
type PasswordPolicy struct {
	MinLength        int
	MaxLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
	DisallowSpaces   bool
}

// DefaultPasswordPolicy returns the policy enforced on signup, reset and
// password change.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        8,
		MaxLength:        128,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumber:    true,
		RequireSpecial:   true,
		DisallowSpaces:   true,
	}
}

// PasswordValidationResult lists every rule the candidate violated.
type PasswordValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidatePassword checks a candidate password against the policy. All
// violations are collected so the client can show them at once.
func (p PasswordPolicy) ValidatePassword(password string) PasswordValidationResult {
	var errs []string

	if len(password) < p.MinLength {
		errs = append(errs, fmt.Sprintf("must be at least %d characters long", p.MinLength))
	}
	if p.MaxLength > 0 && len(password) > p.MaxLength {
		errs = append(errs, fmt.Sprintf("must be at most %d characters long", p.MaxLength))
	}

	var hasUpper, hasLower, hasNumber, hasSpecial, hasSpace bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsNumber(r):
			hasNumber = true
		case unicode.IsSpace(r):
			hasSpace = true
		default:
			hasSpecial = true
		}
	}

	if p.RequireUppercase && !hasUpper {
		errs = append(errs, "must contain an uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		errs = append(errs, "must contain a lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		errs = append(errs, "must contain a digit")
	}
	if p.RequireSpecial && !hasSpecial {
		errs = append(errs, "must contain a special character")
	}
	if p.DisallowSpaces && hasSpace {
		errs = append(errs, "must not contain whitespace")
	}

	return PasswordValidationResult{Valid: len(errs) == 0, Errors: errs}
}
