// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package postgres

import (
	"context"
	"fmt"
)

// schema is the authoritative DDL, applied idempotently by Migrate.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id                      UUID PRIMARY KEY,
    role                    TEXT NOT NULL CHECK (role IN ('student', 'teacher', 'admin')),
    name                    TEXT NOT NULL,
    email                   TEXT NOT NULL UNIQUE,
    registration_number     TEXT NOT NULL UNIQUE,
    password_hash           TEXT NOT NULL,
    password_changed_at     TIMESTAMPTZ,
    status                  TEXT NOT NULL DEFAULT 'not-verified'
                            CHECK (status IN ('not-verified', 'verified', 'deactivated')),
    verify_token_hash       TEXT,
    reset_token_hash        TEXT,
    reset_token_expires_at  TIMESTAMPTZ,
    two_factor_enabled      BOOLEAN NOT NULL DEFAULT FALSE,
    two_factor_status       TEXT NOT NULL DEFAULT 'not-verified'
                            CHECK (two_factor_status IN ('not-verified', 'verified')),
    two_factor_code_hash    TEXT,
    two_factor_expires_at   TIMESTAMPTZ,
    profile_picture         TEXT NOT NULL DEFAULT 'default.jpeg',
    profile_completed       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at              TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at              TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users (email);
CREATE INDEX IF NOT EXISTS idx_users_verify_token ON users (verify_token_hash)
    WHERE verify_token_hash IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_users_reset_token ON users (reset_token_hash)
    WHERE reset_token_hash IS NOT NULL;

CREATE TABLE IF NOT EXISTS departments (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    faculty     TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS courses (
    id              UUID PRIMARY KEY,
    title           TEXT NOT NULL,
    code            TEXT NOT NULL UNIQUE,
    credit_hours    INTEGER NOT NULL CHECK (credit_hours > 0),
    category        TEXT NOT NULL CHECK (category IN ('General', 'Elective', 'Core')),
    prerequisites   UUID[] NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS degrees (
    id              UUID PRIMARY KEY,
    title           TEXT NOT NULL,
    code            TEXT NOT NULL UNIQUE,
    credit_hours    INTEGER NOT NULL DEFAULT 0 CHECK (credit_hours >= 0),
    department_id   UUID REFERENCES departments(id) ON DELETE SET NULL,
    courses         UUID[] NOT NULL DEFAULT '{}',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS offerings (
    id          UUID PRIMARY KEY,
    degree_id   UUID NOT NULL REFERENCES degrees(id) ON DELETE CASCADE,
    semester    INTEGER NOT NULL CHECK (semester BETWEEN 1 AND 12),
    batch       TEXT NOT NULL,
    courses     UUID[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (degree_id, semester, batch)
);

CREATE TABLE IF NOT EXISTS joinings (
    id          UUID PRIMARY KEY,
    degree_id   UUID NOT NULL REFERENCES degrees(id) ON DELETE CASCADE,
    student_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    courses     JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (degree_id, student_id)
);

CREATE TABLE IF NOT EXISTS student_profiles (
    user_id             UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    degree_id           UUID NOT NULL REFERENCES degrees(id),
    registration_number TEXT NOT NULL,
    batch               TEXT NOT NULL,
    current_semester    INTEGER NOT NULL CHECK (current_semester BETWEEN 1 AND 12),
    courses             JSONB NOT NULL DEFAULT '[]',
    created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS teacher_profiles (
    user_id     UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    employee_id TEXT NOT NULL UNIQUE,
    designation TEXT NOT NULL
                CHECK (designation IN ('Lecturer', 'Assistant Professor', 'Professor', 'HOD')),
    courses     UUID[] NOT NULL DEFAULT '{}',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the schema. Safe to run on every startup.
func Migrate(ctx context.Context, db *DB) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
