// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
)

// ProfileRepository handles the student and teacher profile rows that
// complete an account.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// UpsertStudent creates or replaces a student profile.
func (r *ProfileRepository) UpsertStudent(ctx context.Context, p *models.StudentProfile) error {
	now := time.Now().UTC()
	if p.Courses == nil {
		p.Courses = []models.EnrolledCourse{}
	}
	courses, err := json.Marshal(p.Courses)
	if err != nil {
		return fmt.Errorf("marshal enrolled courses: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO student_profiles
		     (user_id, degree_id, registration_number, batch, current_semester, courses, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		 ON CONFLICT (user_id) DO UPDATE SET
		     degree_id = EXCLUDED.degree_id,
		     registration_number = EXCLUDED.registration_number,
		     batch = EXCLUDED.batch,
		     current_semester = EXCLUDED.current_semester,
		     courses = EXCLUDED.courses,
		     updated_at = EXCLUDED.updated_at`,
		p.UserID, p.DegreeID, p.RegistrationNumber, p.Batch, p.CurrentSemester, courses, now)
	if err != nil {
		if IsForeignKeyError(err) {
			return apperrors.NotFound("degree")
		}
		return fmt.Errorf("upsert student profile: %w", err)
	}
	return nil
}

// GetStudent retrieves a student profile by user id.
func (r *ProfileRepository) GetStudent(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error) {
	var p models.StudentProfile
	var courses []byte
	err := r.db.QueryRow(ctx,
		`SELECT user_id, degree_id, registration_number, batch, current_semester, courses, created_at, updated_at
		 FROM student_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.DegreeID, &p.RegistrationNumber, &p.Batch,
			&p.CurrentSemester, &courses, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("student profile")
		}
		return nil, fmt.Errorf("get student profile: %w", err)
	}
	if err := json.Unmarshal(courses, &p.Courses); err != nil {
		return nil, fmt.Errorf("unmarshal enrolled courses: %w", err)
	}
	return &p, nil
}

// UpsertTeacher creates or replaces a teacher profile.
func (r *ProfileRepository) UpsertTeacher(ctx context.Context, p *models.TeacherProfile) error {
	now := time.Now().UTC()
	if p.Courses == nil {
		p.Courses = []uuid.UUID{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO teacher_profiles
		     (user_id, employee_id, designation, courses, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		     employee_id = EXCLUDED.employee_id,
		     designation = EXCLUDED.designation,
		     courses = EXCLUDED.courses,
		     updated_at = EXCLUDED.updated_at`,
		p.UserID, p.EmployeeID, p.Designation, p.Courses, now)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("employee id already registered")
		}
		return fmt.Errorf("upsert teacher profile: %w", err)
	}
	return nil
}

// GetTeacher retrieves a teacher profile by user id.
func (r *ProfileRepository) GetTeacher(ctx context.Context, userID uuid.UUID) (*models.TeacherProfile, error) {
	var p models.TeacherProfile
	err := r.db.QueryRow(ctx,
		`SELECT user_id, employee_id, designation, courses, created_at, updated_at
		 FROM teacher_profiles WHERE user_id = $1`, userID).
		Scan(&p.UserID, &p.EmployeeID, &p.Designation, &p.Courses, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("teacher profile")
		}
		return nil, fmt.Errorf("get teacher profile: %w", err)
	}
	return &p, nil
}
