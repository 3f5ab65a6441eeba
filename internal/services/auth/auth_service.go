// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/models"
	"github.com/campuskit/campuskit/internal/pkg/crypto"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/pkg/validator"
)

const resetTokenTTL = 60 * time.Minute

const twoFactorCodeTTL = 5 * time.Minute

// UserRepository is the persistence surface the auth service needs.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerifyTokenHash(ctx context.Context, hash string) (*models.User, error)
	GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error)
	SetVerified(ctx context.Context, id uuid.UUID) error
	SetResetChallenge(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ClearResetChallenge(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error
	SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	SetTwoFactorChallenge(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error
	ClearTwoFactorChallenge(ctx context.Context, id uuid.UUID, status models.TwoFactorStatus) error
	SetTwoFactorStatus(ctx context.Context, id uuid.UUID, status models.TwoFactorStatus) error
}

// Mailer delivers the challenge secrets. Sends are awaited; a failed
// delivery surfaces to the caller as an UPSTREAM_DELIVERY error.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
	SendTwoFactorCode(ctx context.Context, to, name, code string) error
}

// Service implements the account, session and two-factor use cases.
type Service struct {
	repo   UserRepository
	mailer Mailer
	codec  *TokenCodec
	policy crypto.PasswordPolicy
	log    *logger.Logger
}

// NewService creates the auth service.
func NewService(repo UserRepository, mailer Mailer, codec *TokenCodec, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:   repo,
		mailer: mailer,
		codec:  codec,
		policy: crypto.DefaultPasswordPolicy(),
		log:    log.Named("auth"),
	}
}

// LoginResult carries everything a successful credential check yields.
type LoginResult struct {
	User             *models.User
	Tokens           models.TokenPair
	TwoFactorPending bool
}

// Signup registers a new account, emails the verification link and
// returns the sanitized user with a fresh token pair.
func (s *Service) Signup(ctx context.Context, input models.SignupInput) (*LoginResult, error) {
	if err := validator.Validate(input); err != nil {
		return nil, validationError(err)
	}
	if err := s.checkPolicy(input.Password, input.PasswordConfirm); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = models.RoleStudent
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	challenge, err := crypto.NewVerificationChallenge()
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:                 uuid.New(),
		Role:               role,
		Name:               input.Name,
		Email:              strings.ToLower(strings.TrimSpace(input.Email)),
		RegistrationNumber: input.RegistrationNumber,
		PasswordHash:       passwordHash,
		Status:             models.AccountNotVerified,
		VerifyTokenHash:    &challenge.Digest,
		TwoFactorStatus:    models.TwoFactorNotVerified,
		ProfilePicture:     "default.jpeg",
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, user.Email, user.Name, challenge.Plain); err != nil {
		s.log.Error("verification email failed", "user_id", user.ID, "error", err)
		return nil, apperrors.UpstreamDelivery(err)
	}

	access, refresh, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	s.log.Info("user signed up", "user_id", user.ID, "role", user.Role)
	return &LoginResult{
		User:   user,
		Tokens: models.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// VerifyAccount consumes a verification challenge and marks the account
// verified.
func (s *Service) VerifyAccount(ctx context.Context, plainToken string) (*models.User, error) {
	if plainToken == "" {
		return nil, challengeInvalid()
	}

	user, err := s.repo.GetByVerifyTokenHash(ctx, crypto.DigestSecret(plainToken))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, challengeInvalid()
		}
		return nil, err
	}

	if err := s.repo.SetVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Status = models.AccountVerified
	user.VerifyTokenHash = nil

	s.log.Info("account verified", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and, when two-factor is enabled, opens a
// pending code challenge. Tokens are issued either way; the two-factor
// gate keeps protected routes closed until the code clears.
func (s *Service) Login(ctx context.Context, input models.LoginInput) (*LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return nil, apperrors.NewWithStatus(apperrors.CodeValidation,
			"please provide email and password", http.StatusForbidden)
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			// Burn a bcrypt comparison so unknown emails cost the same
			// as wrong passwords.
			crypto.CheckPassword(input.Password, crypto.DummyPasswordHash)
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}

	if user.IsDeactivated() {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		s.log.Warn("failed login", "user_id", user.ID)
		return nil, apperrors.NewWithStatus(apperrors.CodeInvalidCredentials,
			"incorrect email or password", http.StatusForbidden)
	}

	result := &LoginResult{User: user}

	if user.TwoFactorEnabled {
		if err := s.openTwoFactorChallenge(ctx, user); err != nil {
			return nil, err
		}
		result.TwoFactorPending = true
	}

	access, refresh, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	result.Tokens = models.TokenPair{AccessToken: access, RefreshToken: refresh}

	s.log.Info("user logged in", "user_id", user.ID, "two_factor", result.TwoFactorPending)
	return result, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The
// password-change invariant is enforced here as well: a refresh token
// minted before the last password change is rejected.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if refreshToken == "" {
		return nil, apperrors.NewWithStatus(apperrors.CodeTokenMissing,
			"refresh token is required", http.StatusForbidden)
	}

	claim, err := s.codec.Verify(refreshToken, TokenKindRefresh)
	if err != nil {
		return nil, mapTokenError(err)
	}

	user, err := s.repo.GetByID(ctx, claim.UserID)
	if err != nil {
		return nil, err
	}

	if user.IsDeactivated() {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	if user.TokenIssuedBeforePasswordChange(claim.IssuedAt) {
		return nil, apperrors.NewWithStatus(apperrors.CodeSessionStale,
			"please login again", http.StatusForbidden)
	}

	access, refresh, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &LoginResult{
		User:   user,
		Tokens: models.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}

// ForgotPassword opens a password-reset challenge and emails the link.
// A fresh request overwrites any earlier outstanding challenge.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.NewWithStatus(apperrors.CodeValidation,
			"please provide an email address", http.StatusForbidden)
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}

	challenge, err := crypto.NewResetChallenge()
	if err != nil {
		return apperrors.Internal(err)
	}

	expiresAt := time.Now().UTC().Add(resetTokenTTL)
	if err := s.repo.SetResetChallenge(ctx, user.ID, challenge.Digest, expiresAt); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.Name, challenge.Plain); err != nil {
		s.log.Error("reset email failed", "user_id", user.ID, "error", err)
		return apperrors.UpstreamDelivery(err)
	}

	s.log.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword consumes a reset challenge and installs the new
// password. The challenge is single use and expires after an hour.
func (s *Service) ResetPassword(ctx context.Context, plainToken string, input models.ResetPasswordInput) (*models.User, error) {
	if plainToken == "" || input.Password == "" || input.PasswordConfirm == "" {
		return nil, apperrors.NewWithStatus(apperrors.CodeValidation,
			"token, password and confirmation are required", http.StatusForbidden)
	}

	user, err := s.repo.GetByResetTokenHash(ctx, crypto.DigestSecret(plainToken))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			return nil, challengeInvalid()
		}
		return nil, err
	}

	if user.ResetTokenExpiresAt == nil || time.Now().UTC().After(*user.ResetTokenExpiresAt) {
		// Burn the expired challenge so it cannot be retried.
		if err := s.repo.ClearResetChallenge(ctx, user.ID); err != nil {
			return nil, err
		}
		return nil, apperrors.NewWithStatus(apperrors.CodeChallengeExpired,
			"reset token has expired", http.StatusForbidden)
	}

	if err := s.checkPolicy(input.Password, input.PasswordConfirm); err != nil {
		return nil, err
	}

	if err := s.installPassword(ctx, user, input.Password); err != nil {
		return nil, err
	}
	if err := s.repo.ClearResetChallenge(ctx, user.ID); err != nil {
		return nil, err
	}

	s.log.Info("password reset", "user_id", user.ID)
	return user, nil
}

// ChangePassword rotates the password of an authenticated user. Every
// token issued before the change becomes stale.
func (s *Service) ChangePassword(ctx context.Context, user *models.User, input models.ChangePasswordInput) error {
	if input.CurrentPassword == "" || input.NewPassword == "" {
		return apperrors.Unauthorized("current and new password are required")
	}

	if !crypto.CheckPassword(input.CurrentPassword, user.PasswordHash) {
		return apperrors.NewWithStatus(apperrors.CodeInvalidCredentials,
			"current password is incorrect", http.StatusForbidden)
	}

	if err := s.checkPolicy(input.NewPassword, input.PasswordConfirm); err != nil {
		return err
	}

	if err := s.installPassword(ctx, user, input.NewPassword); err != nil {
		return err
	}

	s.log.Info("password changed", "user_id", user.ID)
	return nil
}

// SetTwoFactor toggles the two-factor flag for the user.
func (s *Service) SetTwoFactor(ctx context.Context, user *models.User, enabled bool) error {
	if err := s.repo.SetTwoFactorEnabled(ctx, user.ID, enabled); err != nil {
		return err
	}
	user.TwoFactorEnabled = enabled
	s.log.Info("two-factor toggled", "user_id", user.ID, "enabled", enabled)
	return nil
}

// RegenerateTwoFactorCode issues a fresh code for a pending challenge.
// Once the session has cleared two-factor there is nothing to
// regenerate, and the request is rejected.
func (s *Service) RegenerateTwoFactorCode(ctx context.Context, user *models.User) error {
	if !user.TwoFactorEnabled {
		return apperrors.NewWithStatus(apperrors.CodeValidation,
			"two-factor authentication is not enabled", http.StatusBadRequest)
	}
	if user.TwoFactorStatus == models.TwoFactorVerified {
		return apperrors.NewWithStatus(apperrors.CodeValidation,
			"two-factor code already verified", http.StatusBadRequest)
	}
	return s.openTwoFactorChallenge(ctx, user)
}

// VerifyTwoFactorCode checks the emailed code and clears the pending
// challenge. The stored digest is wiped on success so the same code can
// never verify twice.
func (s *Service) VerifyTwoFactorCode(ctx context.Context, user *models.User, candidate string) error {
	if candidate == "" {
		return apperrors.NewWithStatus(apperrors.CodeCodeMissing,
			"verification code is required", http.StatusForbidden)
	}
	if user.TwoFactorCodeHash == nil {
		return apperrors.NewWithStatus(apperrors.CodeCodeInvalid,
			"no verification code is pending", http.StatusForbidden)
	}
	if user.TwoFactorExpiresAt == nil || time.Now().UTC().After(*user.TwoFactorExpiresAt) {
		return apperrors.NewWithStatus(apperrors.CodeCodeExpired,
			"verification code has expired", http.StatusForbidden)
	}
	if !crypto.CheckSecret(strings.ToUpper(candidate), *user.TwoFactorCodeHash) {
		return apperrors.NewWithStatus(apperrors.CodeCodeInvalid,
			"incorrect verification code", http.StatusForbidden)
	}

	if err := s.repo.ClearTwoFactorChallenge(ctx, user.ID, models.TwoFactorVerified); err != nil {
		return err
	}
	user.TwoFactorCodeHash = nil
	user.TwoFactorExpiresAt = nil
	user.TwoFactorStatus = models.TwoFactorVerified

	s.log.Info("two-factor verified", "user_id", user.ID)
	return nil
}

func (s *Service) openTwoFactorChallenge(ctx context.Context, user *models.User) error {
	code, err := crypto.NewTwoFactorCode()
	if err != nil {
		return apperrors.Internal(err)
	}

	expiresAt := time.Now().UTC().Add(twoFactorCodeTTL)
	if err := s.repo.SetTwoFactorChallenge(ctx, user.ID, code.Digest, expiresAt); err != nil {
		return err
	}
	user.TwoFactorCodeHash = &code.Digest
	user.TwoFactorExpiresAt = &expiresAt
	user.TwoFactorStatus = models.TwoFactorNotVerified

	if err := s.mailer.SendTwoFactorCode(ctx, user.Email, user.Name, code.Plain); err != nil {
		s.log.Error("two-factor email failed", "user_id", user.ID, "error", err)
		return apperrors.UpstreamDelivery(err)
	}
	return nil
}

func (s *Service) installPassword(ctx context.Context, user *models.User, password string) error {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return apperrors.Internal(err)
	}
	changedAt := time.Now().UTC()
	if err := s.repo.UpdatePassword(ctx, user.ID, hash, changedAt); err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	return nil
}

func (s *Service) checkPolicy(password, confirm string) error {
	if result := s.policy.ValidatePassword(password); !result.Valid {
		return apperrors.NewWithStatus(apperrors.CodeWeakPassword,
			"password "+strings.Join(result.Errors, "; "), http.StatusBadRequest)
	}
	if password != confirm {
		return apperrors.NewWithStatus(apperrors.CodePasswordMismatch,
			"passwords do not match", http.StatusBadRequest)
	}
	return nil
}

func challengeInvalid() error {
	return apperrors.NewWithStatus(apperrors.CodeChallengeInvalid,
		"token is invalid or already used", http.StatusForbidden)
}

func validationError(err error) error {
	fields := validator.GetValidationErrors(err)
	parts := make([]string, 0, len(fields))
	for field, msg := range fields {
		parts = append(parts, field+" "+msg)
	}
	return apperrors.NewWithStatus(apperrors.CodeValidation,
		strings.Join(parts, "; "), http.StatusBadRequest)
}

func mapTokenError(err error) error {
	switch err {
	case ErrTokenExpired:
		return apperrors.NewWithStatus(apperrors.CodeTokenExpired,
			"token has expired", http.StatusUnauthorized)
	default:
		return apperrors.NewWithStatus(apperrors.CodeTokenInvalid,
			"token is invalid", http.StatusForbidden)
	}
}
