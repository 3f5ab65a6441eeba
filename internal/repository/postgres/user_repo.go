// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
)

// userColumns is the scan order shared by every user query.
const userColumns = `
	id, role, name, email, registration_number, password_hash,
	password_changed_at, status, verify_token_hash, reset_token_hash,
	reset_token_expires_at, two_factor_enabled, two_factor_status,
	two_factor_code_hash, two_factor_expires_at, profile_picture,
	profile_completed, created_at, updated_at`

// UserRepository handles user database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, role, name, email, registration_number, password_hash,
			status, verify_token_hash, two_factor_enabled, two_factor_status,
			profile_picture, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		)`

	now := time.Now().UTC()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Role,
		user.Name,
		user.Email,
		user.RegistrationNumber,
		user.PasswordHash,
		user.Status,
		user.VerifyTokenHash,
		user.TwoFactorEnabled,
		user.TwoFactorStatus,
		user.ProfilePicture,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("email or registration number already registered")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

// GetByVerifyTokenHash retrieves the user holding an outstanding
// verification challenge.
func (r *UserRepository) GetByVerifyTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE verify_token_hash = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, hash))
}

// GetByResetTokenHash retrieves the user holding an outstanding reset
// challenge.
func (r *UserRepository) GetByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE reset_token_hash = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, hash))
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*models.User, error) {
	query := `SELECT` + userColumns + ` FROM users ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetVerified marks the account verified and consumes the challenge.
func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET status = $2, verify_token_hash = NULL, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, models.AccountVerified)
}

// SetResetChallenge stores a reset digest, replacing any prior one.
func (r *UserRepository) SetResetChallenge(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, hash, expiresAt)
}

// ClearResetChallenge consumes the outstanding reset challenge.
func (r *UserRepository) ClearResetChallenge(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id)
}

// UpdatePassword installs a new password hash and records the change
// time, which invalidates every previously issued token.
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, passwordHash, changedAt)
}

// SetTwoFactorEnabled toggles the two-factor flag.
func (r *UserRepository) SetTwoFactorEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `
		UPDATE users
		SET two_factor_enabled = $2, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, enabled)
}

// SetTwoFactorChallenge stores a fresh code digest and resets the
// status to not-verified.
func (r *UserRepository) SetTwoFactorChallenge(ctx context.Context, id uuid.UUID, hash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET two_factor_code_hash = $2, two_factor_expires_at = $3,
		    two_factor_status = $4, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, hash, expiresAt, models.TwoFactorNotVerified)
}

// ClearTwoFactorChallenge wipes the code digest and sets the status.
func (r *UserRepository) ClearTwoFactorChallenge(ctx context.Context, id uuid.UUID, status models.TwoFactorStatus) error {
	query := `
		UPDATE users
		SET two_factor_code_hash = NULL, two_factor_expires_at = NULL,
		    two_factor_status = $2, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, status)
}

// SetTwoFactorStatus updates only the persisted two-factor status.
func (r *UserRepository) SetTwoFactorStatus(ctx context.Context, id uuid.UUID, status models.TwoFactorStatus) error {
	query := `
		UPDATE users
		SET two_factor_status = $2, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, status)
}

// SetProfilePicture updates the stored object key for the avatar.
func (r *UserRepository) SetProfilePicture(ctx context.Context, id uuid.UUID, key string) error {
	query := `
		UPDATE users
		SET profile_picture = $2, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, key)
}

// SetProfileCompleted flags the account after profile completion.
func (r *UserRepository) SetProfileCompleted(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE users
		SET profile_completed = TRUE, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *UserRepository) exec(ctx context.Context, query string, id uuid.UUID, args ...interface{}) error {
	tag, err := r.db.Exec(ctx, query, append([]interface{}{id}, args...)...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("user")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *UserRepository) scanOne(row pgx.Row) (*models.User, error) {
	user, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("user")
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) scanRow(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Name,
		&user.Email,
		&user.RegistrationNumber,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.Status,
		&user.VerifyTokenHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiresAt,
		&user.TwoFactorEnabled,
		&user.TwoFactorStatus,
		&user.TwoFactorCodeHash,
		&user.TwoFactorExpiresAt,
		&user.ProfilePicture,
		&user.ProfileCompleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
