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

// DepartmentRepository handles department rows.
type DepartmentRepository struct {
	db *DB
}

// NewDepartmentRepository creates a department repository.
func NewDepartmentRepository(db *DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// Create inserts a department.
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := r.db.Exec(ctx,
		`INSERT INTO departments (id, name, faculty, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		d.ID, d.Name, d.Faculty, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("department name already exists")
		}
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// GetByID retrieves a department.
func (r *DepartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error) {
	var d models.Department
	err := r.db.QueryRow(ctx,
		`SELECT id, name, faculty, created_at, updated_at FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Faculty, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("department")
		}
		return nil, fmt.Errorf("get department: %w", err)
	}
	return &d, nil
}

// List returns all departments.
func (r *DepartmentRepository) List(ctx context.Context) ([]*models.Department, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, faculty, created_at, updated_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var out []*models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.Faculty, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Update replaces a department's mutable fields.
func (r *DepartmentRepository) Update(ctx context.Context, id uuid.UUID, input models.DepartmentInput) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE departments SET name = $2, faculty = $3, updated_at = now() WHERE id = $1`,
		id, input.Name, input.Faculty)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("department name already exists")
		}
		return fmt.Errorf("update department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("department")
	}
	return nil
}

// Delete removes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("department")
	}
	return nil
}

// CourseRepository handles course rows.
type CourseRepository struct {
	db *DB
}

// NewCourseRepository creates a course repository.
func NewCourseRepository(db *DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Prerequisites == nil {
		c.Prerequisites = []uuid.UUID{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO courses (id, title, code, credit_hours, category, prerequisites, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Title, c.Code, c.CreditHours, c.Category, c.Prerequisites, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("course code already exists")
		}
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// GetByID retrieves a course.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	var c models.Course
	err := r.db.QueryRow(ctx,
		`SELECT id, title, code, credit_hours, category, prerequisites, created_at, updated_at
		 FROM courses WHERE id = $1`, id).
		Scan(&c.ID, &c.Title, &c.Code, &c.CreditHours, &c.Category, &c.Prerequisites, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("course")
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

// List returns all courses.
func (r *CourseRepository) List(ctx context.Context) ([]*models.Course, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, code, credit_hours, category, prerequisites, created_at, updated_at
		 FROM courses ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var out []*models.Course
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Code, &c.CreditHours, &c.Category,
			&c.Prerequisites, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// Update replaces a course's mutable fields.
func (r *CourseRepository) Update(ctx context.Context, id uuid.UUID, input models.CourseInput) error {
	prereqs := input.Prerequisites
	if prereqs == nil {
		prereqs = []uuid.UUID{}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE courses
		 SET title = $2, code = $3, credit_hours = $4, category = $5, prerequisites = $6, updated_at = now()
		 WHERE id = $1`,
		id, input.Title, input.Code, input.CreditHours, input.Category, prereqs)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("course code already exists")
		}
		return fmt.Errorf("update course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("course")
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("course")
	}
	return nil
}

// DegreeRepository handles degree rows.
type DegreeRepository struct {
	db *DB
}

// NewDegreeRepository creates a degree repository.
func NewDegreeRepository(db *DB) *DegreeRepository {
	return &DegreeRepository{db: db}
}

// Create inserts a degree.
func (r *DegreeRepository) Create(ctx context.Context, d *models.Degree) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Courses == nil {
		d.Courses = []uuid.UUID{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO degrees (id, title, code, credit_hours, department_id, courses, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		d.ID, d.Title, d.Code, d.CreditHours, d.DepartmentID, d.Courses, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("degree code already exists")
		}
		if IsForeignKeyError(err) {
			return apperrors.NotFound("department")
		}
		return fmt.Errorf("create degree: %w", err)
	}
	return nil
}

// GetByID retrieves a degree.
func (r *DegreeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Degree, error) {
	var d models.Degree
	err := r.db.QueryRow(ctx,
		`SELECT id, title, code, credit_hours, department_id, courses, created_at, updated_at
		 FROM degrees WHERE id = $1`, id).
		Scan(&d.ID, &d.Title, &d.Code, &d.CreditHours, &d.DepartmentID, &d.Courses, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("degree")
		}
		return nil, fmt.Errorf("get degree: %w", err)
	}
	return &d, nil
}

// List returns all degrees.
func (r *DegreeRepository) List(ctx context.Context) ([]*models.Degree, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, code, credit_hours, department_id, courses, created_at, updated_at
		 FROM degrees ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list degrees: %w", err)
	}
	defer rows.Close()

	var out []*models.Degree
	for rows.Next() {
		var d models.Degree
		if err := rows.Scan(&d.ID, &d.Title, &d.Code, &d.CreditHours, &d.DepartmentID,
			&d.Courses, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan degree: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

// Update replaces a degree's mutable fields.
func (r *DegreeRepository) Update(ctx context.Context, id uuid.UUID, input models.DegreeInput) error {
	courses := input.Courses
	if courses == nil {
		courses = []uuid.UUID{}
	}
	tag, err := r.db.Exec(ctx,
		`UPDATE degrees
		 SET title = $2, code = $3, credit_hours = $4, department_id = $5, courses = $6, updated_at = now()
		 WHERE id = $1`,
		id, input.Title, input.Code, input.CreditHours, input.DepartmentID, courses)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("degree code already exists")
		}
		return fmt.Errorf("update degree: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("degree")
	}
	return nil
}

// Delete removes a degree with its offerings and joinings.
func (r *DegreeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM degrees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete degree: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("degree")
	}
	return nil
}

// OfferingRepository handles per-semester course offerings.
type OfferingRepository struct {
	db *DB
}

// NewOfferingRepository creates an offering repository.
func NewOfferingRepository(db *DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// Create inserts an offering under a degree.
func (r *OfferingRepository) Create(ctx context.Context, o *models.Offering) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Courses == nil {
		o.Courses = []uuid.UUID{}
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO offerings (id, degree_id, semester, batch, courses, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		o.ID, o.DegreeID, o.Semester, o.Batch, o.Courses, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("offering for this semester and batch already exists")
		}
		if IsForeignKeyError(err) {
			return apperrors.NotFound("degree")
		}
		return fmt.Errorf("create offering: %w", err)
	}
	return nil
}

// GetByID retrieves an offering scoped to a degree.
func (r *OfferingRepository) GetByID(ctx context.Context, degreeID, id uuid.UUID) (*models.Offering, error) {
	var o models.Offering
	err := r.db.QueryRow(ctx,
		`SELECT id, degree_id, semester, batch, courses, created_at, updated_at
		 FROM offerings WHERE id = $1 AND degree_id = $2`, id, degreeID).
		Scan(&o.ID, &o.DegreeID, &o.Semester, &o.Batch, &o.Courses, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("offering")
		}
		return nil, fmt.Errorf("get offering: %w", err)
	}
	return &o, nil
}

// ListByDegree returns all offerings for a degree.
func (r *OfferingRepository) ListByDegree(ctx context.Context, degreeID uuid.UUID) ([]*models.Offering, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, degree_id, semester, batch, courses, created_at, updated_at
		 FROM offerings WHERE degree_id = $1 ORDER BY semester, batch`, degreeID)
	if err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	defer rows.Close()

	var out []*models.Offering
	for rows.Next() {
		var o models.Offering
		if err := rows.Scan(&o.ID, &o.DegreeID, &o.Semester, &o.Batch, &o.Courses,
			&o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan offering: %w", err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

// Update replaces an offering's mutable fields.
func (r *OfferingRepository) Update(ctx context.Context, degreeID, id uuid.UUID, input models.OfferingInput) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE offerings
		 SET semester = $3, batch = $4, courses = $5, updated_at = now()
		 WHERE id = $1 AND degree_id = $2`,
		id, degreeID, input.Semester, input.Batch, input.Courses)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("offering for this semester and batch already exists")
		}
		return fmt.Errorf("update offering: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("offering")
	}
	return nil
}

// Delete removes an offering.
func (r *OfferingRepository) Delete(ctx context.Context, degreeID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM offerings WHERE id = $1 AND degree_id = $2`, id, degreeID)
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("offering")
	}
	return nil
}

// JoiningRepository handles student enrollments in degrees. The graded
// course list stores as JSONB.
type JoiningRepository struct {
	db *DB
}

// NewJoiningRepository creates a joining repository.
func NewJoiningRepository(db *DB) *JoiningRepository {
	return &JoiningRepository{db: db}
}

// Create enrolls a student in a degree.
func (r *JoiningRepository) Create(ctx context.Context, j *models.Joining) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	courses, err := json.Marshal(j.Courses)
	if err != nil {
		return fmt.Errorf("marshal joining courses: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO joinings (id, degree_id, student_id, courses, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		j.ID, j.DegreeID, j.StudentID, courses, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return apperrors.AlreadyExists("student already joined this degree")
		}
		if IsForeignKeyError(err) {
			return apperrors.NotFound("degree or student")
		}
		return fmt.Errorf("create joining: %w", err)
	}
	return nil
}

// GetByID retrieves a joining scoped to a degree.
func (r *JoiningRepository) GetByID(ctx context.Context, degreeID, id uuid.UUID) (*models.Joining, error) {
	var j models.Joining
	var courses []byte
	err := r.db.QueryRow(ctx,
		`SELECT id, degree_id, student_id, courses, created_at, updated_at
		 FROM joinings WHERE id = $1 AND degree_id = $2`, id, degreeID).
		Scan(&j.ID, &j.DegreeID, &j.StudentID, &courses, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("joining")
		}
		return nil, fmt.Errorf("get joining: %w", err)
	}
	if err := json.Unmarshal(courses, &j.Courses); err != nil {
		return nil, fmt.Errorf("unmarshal joining courses: %w", err)
	}
	return &j, nil
}

// ListByDegree returns all joinings for a degree.
func (r *JoiningRepository) ListByDegree(ctx context.Context, degreeID uuid.UUID) ([]*models.Joining, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, degree_id, student_id, courses, created_at, updated_at
		 FROM joinings WHERE degree_id = $1 ORDER BY created_at`, degreeID)
	if err != nil {
		return nil, fmt.Errorf("list joinings: %w", err)
	}
	defer rows.Close()

	var out []*models.Joining
	for rows.Next() {
		var j models.Joining
		var courses []byte
		if err := rows.Scan(&j.ID, &j.DegreeID, &j.StudentID, &courses,
			&j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan joining: %w", err)
		}
		if err := json.Unmarshal(courses, &j.Courses); err != nil {
			return nil, fmt.Errorf("unmarshal joining courses: %w", err)
		}
		out = append(out, &j)
	}
	return out, rows.Err()
}

// Delete removes an enrollment.
func (r *JoiningRepository) Delete(ctx context.Context, degreeID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM joinings WHERE id = $1 AND degree_id = $2`, id, degreeID)
	if err != nil {
		return fmt.Errorf("delete joining: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("joining")
	}
	return nil
}
