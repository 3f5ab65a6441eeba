// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// IsValid checks if the role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanManageAcademics returns true if the role may mutate academic records.
func (r Role) CanManageAcademics() bool {
	return r == RoleTeacher || r == RoleAdmin
}

// AccountStatus tracks the verification lifecycle of an account.
type AccountStatus string

const (
	AccountNotVerified AccountStatus = "not-verified"
	AccountVerified    AccountStatus = "verified"
	AccountDeactivated AccountStatus = "deactivated"
)

// IsValid checks if the status is one of the known values.
func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountNotVerified, AccountVerified, AccountDeactivated:
		return true
	}
	return false
}

// TwoFactorStatus tracks whether the current session has cleared the
// emailed one-time code. It persists on the user row so a stale session
// can demote it back to not-verified.
type TwoFactorStatus string

const (
	TwoFactorNotVerified TwoFactorStatus = "not-verified"
	TwoFactorVerified    TwoFactorStatus = "verified"
)

// User represents a platform account. Secret material (password hash,
// challenge digests) never serializes to JSON.
type User struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	Role               Role          `json:"role" db:"role"`
	Name               string        `json:"name" db:"name"`
	Email              string        `json:"email" db:"email"`
	RegistrationNumber string        `json:"registrationNumber" db:"registration_number"`
	PasswordHash       string        `json:"-" db:"password_hash"`
	PasswordChangedAt  *time.Time    `json:"-" db:"password_changed_at"`
	Status             AccountStatus `json:"status" db:"status"`

	VerifyTokenHash *string `json:"-" db:"verify_token_hash"`

	ResetTokenHash      *string    `json:"-" db:"reset_token_hash"`
	ResetTokenExpiresAt *time.Time `json:"-" db:"reset_token_expires_at"`

	TwoFactorEnabled   bool            `json:"twoFactorEnabled" db:"two_factor_enabled"`
	TwoFactorStatus    TwoFactorStatus `json:"-" db:"two_factor_status"`
	TwoFactorCodeHash  *string         `json:"-" db:"two_factor_code_hash"`
	TwoFactorExpiresAt *time.Time      `json:"-" db:"two_factor_expires_at"`

	ProfilePicture   string    `json:"profilePicture" db:"profile_picture"`
	ProfileCompleted bool      `json:"profileCompleted" db:"profile_completed"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// IsDeactivated returns true if the account has been disabled.
func (u *User) IsDeactivated() bool {
	return u.Status == AccountDeactivated
}

// TwoFactorPending returns true if the user still owes a one-time code
// before the protected surface opens up.
func (u *User) TwoFactorPending() bool {
	return u.TwoFactorEnabled && u.TwoFactorStatus != TwoFactorVerified
}

// TokenIssuedBeforePasswordChange reports whether a token minted at
// issuedAt predates the last password change. Such tokens belong to a
// stale session and must be rejected.
func (u *User) TokenIssuedBeforePasswordChange(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	// Compare at second precision; the token iat claim carries no
	// sub-second component.
	return !issuedAt.Truncate(time.Second).After(u.PasswordChangedAt.Truncate(time.Second))
}

// SignupInput is the payload for account creation.
type SignupInput struct {
	Name               string `json:"name" validate:"required,min=3,max=50"`
	Email              string `json:"email" validate:"required,email"`
	RegistrationNumber string `json:"registrationNumber" validate:"required,registration_number"`
	Role               Role   `json:"role" validate:"omitempty,oneof=student teacher"`
	Password           string `json:"password" validate:"required"`
	PasswordConfirm    string `json:"passwordConfirm" validate:"required"`
}

// LoginInput is the payload for credential login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordInput requests a password-reset challenge by email.
type ForgotPasswordInput struct {
	Email string `json:"email"`
}

// ResetPasswordInput carries the replacement credential for the reset flow.
type ResetPasswordInput struct {
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// ChangePasswordInput is the payload for an authenticated password change.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// RefreshInput carries the refresh token presented for rotation.
type RefreshInput struct {
	RefreshToken string `json:"refreshToken"`
}

// TwoFactorToggleInput switches the two-factor flag on an account.
type TwoFactorToggleInput struct {
	Enabled bool `json:"enabled"`
}

// TokenPair is an access/refresh token set returned on signup, login and
// refresh exchange.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
