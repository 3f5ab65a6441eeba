// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/models"
	"github.com/campuskit/campuskit/internal/pkg/crypto"
	"github.com/campuskit/campuskit/internal/repository/postgres"
)

// RunMigrations applies the database schema and exits. Used by the
// migrate subcommand so deploys can gate rollout on schema readiness.
func RunMigrations(ctx context.Context, cfgFile string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.URL, postgres.Options{
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// CreateAdmin provisions a verified admin account. Signup only mints
// student and teacher roles, so the first admin comes from the CLI.
func CreateAdmin(ctx context.Context, cfgFile, name, email, password string) error {
	cfg, err := LoadConfig(cfgFile)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url is required")
	}

	policy := crypto.DefaultPasswordPolicy()
	if result := policy.ValidatePassword(password); !result.Valid {
		return fmt.Errorf("password %s", strings.Join(result.Errors, "; "))
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.URL, postgres.Options{
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	user := &models.User{
		ID:                 uuid.New(),
		Role:               models.RoleAdmin,
		Name:               name,
		Email:              strings.ToLower(strings.TrimSpace(email)),
		RegistrationNumber: "ADMIN-" + crypto.MustRandomHex(4),
		PasswordHash:       hash,
		Status:             models.AccountVerified,
		ProfileCompleted:   true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := postgres.NewUserRepository(db).Create(ctx, user); err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	return nil
}
