// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package models

import (
	"time"

	"github.com/google/uuid"
)

// CourseCategory classifies a course within a degree plan.
type CourseCategory string

const (
	CourseGeneral  CourseCategory = "General"
	CourseElective CourseCategory = "Elective"
	CourseCore     CourseCategory = "Core"
)

// IsValid checks if the category is one of the known values.
func (c CourseCategory) IsValid() bool {
	switch c {
	case CourseGeneral, CourseElective, CourseCore:
		return true
	}
	return false
}

// Grade is the letter grade recorded for a completed course.
type Grade string

const (
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeDPlus Grade = "D+"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
	GradeNil   Grade = "Nil"
)

// IsValid checks if the grade is one of the known values.
func (g Grade) IsValid() bool {
	switch g {
	case GradeA, GradeBPlus, GradeB, GradeCPlus, GradeC, GradeDPlus, GradeD, GradeF, GradeNil:
		return true
	}
	return false
}

// CourseStatus tracks a student's standing in an enrolled course.
type CourseStatus string

const (
	CourseFailed     CourseStatus = "fail"
	CoursePassed     CourseStatus = "pass"
	CourseInProgress CourseStatus = "in progress"
)

// Designation is a teaching staff rank.
type Designation string

const (
	DesignationLecturer           Designation = "Lecturer"
	DesignationAssistantProfessor Designation = "Assistant Professor"
	DesignationProfessor          Designation = "Professor"
	DesignationHOD                Designation = "HOD"
)

// IsValid checks if the designation is one of the known ranks.
func (d Designation) IsValid() bool {
	switch d {
	case DesignationLecturer, DesignationAssistantProfessor, DesignationProfessor, DesignationHOD:
		return true
	}
	return false
}

// Department groups degrees under a faculty.
type Department struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Faculty   string    `json:"faculty" db:"faculty"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Course is a teachable unit, optionally gated by prerequisites.
type Course struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	Title         string         `json:"title" db:"title"`
	Code          string         `json:"code" db:"code"`
	CreditHours   int            `json:"creditHours" db:"credit_hours"`
	Category      CourseCategory `json:"category" db:"category"`
	Prerequisites []uuid.UUID    `json:"prerequisites" db:"prerequisites"`
	CreatedAt     time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" db:"updated_at"`
}

// Degree is a program of study composed of courses.
type Degree struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Title        string      `json:"title" db:"title"`
	Code         string      `json:"code" db:"code"`
	CreditHours  int         `json:"creditHours" db:"credit_hours"`
	DepartmentID *uuid.UUID  `json:"departmentId,omitempty" db:"department_id"`
	Courses      []uuid.UUID `json:"courses" db:"courses"`
	CreatedAt    time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time   `json:"updatedAt" db:"updated_at"`
}

// Offering is the set of courses a degree runs for one semester and batch.
type Offering struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	DegreeID  uuid.UUID   `json:"degreeId" db:"degree_id"`
	Semester  int         `json:"semester" db:"semester"`
	Batch     string      `json:"batch" db:"batch"`
	Courses   []uuid.UUID `json:"courses" db:"courses"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time   `json:"updatedAt" db:"updated_at"`
}

// JoiningCourse records the grade a student earned in one joined course.
type JoiningCourse struct {
	CourseID uuid.UUID `json:"courseId"`
	Grade    Grade     `json:"grade"`
}

// Joining enrolls a student into a degree with their per-course grades.
type Joining struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	DegreeID  uuid.UUID       `json:"degreeId" db:"degree_id"`
	StudentID uuid.UUID       `json:"studentId" db:"student_id"`
	Courses   []JoiningCourse `json:"courses" db:"courses"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// EnrolledCourse tracks one course in a student's profile.
type EnrolledCourse struct {
	CourseID uuid.UUID    `json:"courseId"`
	Status   CourseStatus `json:"status"`
}

// StudentProfile completes a student account with academic placement.
type StudentProfile struct {
	UserID             uuid.UUID        `json:"userId" db:"user_id"`
	DegreeID           uuid.UUID        `json:"degreeId" db:"degree_id"`
	RegistrationNumber string           `json:"registrationNumber" db:"registration_number"`
	Batch              string           `json:"batch" db:"batch"`
	CurrentSemester    int              `json:"currentSemester" db:"current_semester"`
	Courses            []EnrolledCourse `json:"courses" db:"courses"`
	CreatedAt          time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time        `json:"updatedAt" db:"updated_at"`
}

// TeacherProfile completes a teacher account with employment details.
type TeacherProfile struct {
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	EmployeeID  string      `json:"employeeId" db:"employee_id"`
	Designation Designation `json:"designation" db:"designation"`
	Courses     []uuid.UUID `json:"courses" db:"courses"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time   `json:"updatedAt" db:"updated_at"`
}

// DepartmentInput is the payload for department create and update.
type DepartmentInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Faculty string `json:"faculty" validate:"required,min=2,max=100"`
}

// CourseInput is the payload for course create and update.
type CourseInput struct {
	Title         string         `json:"title" validate:"required,min=2,max=120"`
	Code          string         `json:"code" validate:"required,min=2,max=20"`
	CreditHours   int            `json:"creditHours" validate:"required,min=1,max=6"`
	Category      CourseCategory `json:"category" validate:"required,oneof=General Elective Core"`
	Prerequisites []uuid.UUID    `json:"prerequisites"`
}

// DegreeInput is the payload for degree create and update.
type DegreeInput struct {
	Title        string      `json:"title" validate:"required,min=2,max=120"`
	Code         string      `json:"code" validate:"required,min=2,max=20"`
	CreditHours  int         `json:"creditHours" validate:"min=0"`
	DepartmentID *uuid.UUID  `json:"departmentId"`
	Courses      []uuid.UUID `json:"courses"`
}

// OfferingInput is the payload for offering create and update.
type OfferingInput struct {
	Semester int         `json:"semester" validate:"required,min=1,max=12"`
	Batch    string      `json:"batch" validate:"required"`
	Courses  []uuid.UUID `json:"courses" validate:"required,min=1"`
}

// JoiningInput is the payload for a student joining a degree.
type JoiningInput struct {
	Courses []JoiningCourse `json:"courses" validate:"required,min=1,dive"`
}

// StudentProfileInput completes a student profile.
type StudentProfileInput struct {
	DegreeID        uuid.UUID        `json:"degreeId" validate:"required"`
	Batch           string           `json:"batch" validate:"required"`
	CurrentSemester int              `json:"currentSemester" validate:"required,min=1,max=12"`
	Courses         []EnrolledCourse `json:"courses"`
}

// TeacherProfileInput completes a teacher profile.
type TeacherProfileInput struct {
	EmployeeID  string      `json:"employeeId" validate:"required"`
	Designation Designation `json:"designation" validate:"required,oneof=Lecturer 'Assistant Professor' Professor HOD"`
	Courses     []uuid.UUID `json:"courses"`
}
