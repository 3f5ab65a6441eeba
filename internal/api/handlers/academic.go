// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// DepartmentStore is the persistence surface for departments.
type DepartmentStore interface {
	Create(ctx context.Context, d *models.Department) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Department, error)
	List(ctx context.Context) ([]*models.Department, error)
	Update(ctx context.Context, id uuid.UUID, input models.DepartmentInput) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CourseStore is the persistence surface for courses.
type CourseStore interface {
	Create(ctx context.Context, c *models.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	List(ctx context.Context) ([]*models.Course, error)
	Update(ctx context.Context, id uuid.UUID, input models.CourseInput) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// DegreeStore is the persistence surface for degrees.
type DegreeStore interface {
	Create(ctx context.Context, d *models.Degree) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Degree, error)
	List(ctx context.Context) ([]*models.Degree, error)
	Update(ctx context.Context, id uuid.UUID, input models.DegreeInput) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OfferingStore is the persistence surface for degree offerings.
type OfferingStore interface {
	Create(ctx context.Context, o *models.Offering) error
	GetByID(ctx context.Context, degreeID, id uuid.UUID) (*models.Offering, error)
	ListByDegree(ctx context.Context, degreeID uuid.UUID) ([]*models.Offering, error)
	Update(ctx context.Context, degreeID, id uuid.UUID, input models.OfferingInput) error
	Delete(ctx context.Context, degreeID, id uuid.UUID) error
}

// JoiningStore is the persistence surface for degree joinings.
type JoiningStore interface {
	Create(ctx context.Context, j *models.Joining) error
	GetByID(ctx context.Context, degreeID, id uuid.UUID) (*models.Joining, error)
	ListByDegree(ctx context.Context, degreeID uuid.UUID) ([]*models.Joining, error)
	Delete(ctx context.Context, degreeID, id uuid.UUID) error
}

// AcademicHandler serves the department, course, degree, offering and
// joining routes.
type AcademicHandler struct {
	BaseHandler
	departments DepartmentStore
	courses     CourseStore
	degrees     DegreeStore
	offerings   OfferingStore
	joinings    JoiningStore
}

// NewAcademicHandler creates the academic handler.
func NewAcademicHandler(
	departments DepartmentStore,
	courses CourseStore,
	degrees DegreeStore,
	offerings OfferingStore,
	joinings JoiningStore,
	log *logger.Logger,
) *AcademicHandler {
	return &AcademicHandler{
		BaseHandler: NewBaseHandler(log.Named("academic")),
		departments: departments,
		courses:     courses,
		degrees:     degrees,
		offerings:   offerings,
		joinings:    joinings,
	}
}

// Departments

func (h *AcademicHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var input models.DepartmentInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	department := &models.Department{Name: input.Name, Faculty: input.Faculty}
	if err := h.departments.Create(r.Context(), department); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, Envelope{"data": Envelope{"department": department}})
}

func (h *AcademicHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.departments.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(departments),
		"data":    Envelope{"departments": departments},
	})
}

func (h *AcademicHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "departmentID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	department, err := h.departments.GetByID(r.Context(), id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"department": department}})
}

func (h *AcademicHandler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "departmentID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	var input models.DepartmentInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.departments.Update(r.Context(), id, input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "department updated"})
}

func (h *AcademicHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "departmentID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.departments.Delete(r.Context(), id); err != nil {
		h.Error(w, r, err)
		return
	}
	h.NoContent(w)
}

// Courses

func (h *AcademicHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var input models.CourseInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	course := &models.Course{
		Title:         input.Title,
		Code:          input.Code,
		CreditHours:   input.CreditHours,
		Category:      input.Category,
		Prerequisites: input.Prerequisites,
	}
	if err := h.courses.Create(r.Context(), course); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, Envelope{"data": Envelope{"course": course}})
}

func (h *AcademicHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.courses.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(courses),
		"data":    Envelope{"courses": courses},
	})
}

func (h *AcademicHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "courseID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	course, err := h.courses.GetByID(r.Context(), id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"course": course}})
}

func (h *AcademicHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "courseID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	var input models.CourseInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.courses.Update(r.Context(), id, input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "course updated"})
}

func (h *AcademicHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "courseID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.courses.Delete(r.Context(), id); err != nil {
		h.Error(w, r, err)
		return
	}
	h.NoContent(w)
}

// Degrees

func (h *AcademicHandler) CreateDegree(w http.ResponseWriter, r *http.Request) {
	var input models.DegreeInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	degree := &models.Degree{
		Title:        input.Title,
		Code:         input.Code,
		CreditHours:  input.CreditHours,
		DepartmentID: input.DepartmentID,
		Courses:      input.Courses,
	}
	if err := h.degrees.Create(r.Context(), degree); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, Envelope{"data": Envelope{"degree": degree}})
}

func (h *AcademicHandler) ListDegrees(w http.ResponseWriter, r *http.Request) {
	degrees, err := h.degrees.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(degrees),
		"data":    Envelope{"degrees": degrees},
	})
}

func (h *AcademicHandler) GetDegree(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	degree, err := h.degrees.GetByID(r.Context(), id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"degree": degree}})
}

func (h *AcademicHandler) UpdateDegree(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	var input models.DegreeInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.degrees.Update(r.Context(), id, input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "degree updated"})
}

func (h *AcademicHandler) DeleteDegree(w http.ResponseWriter, r *http.Request) {
	id, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.degrees.Delete(r.Context(), id); err != nil {
		h.Error(w, r, err)
		return
	}
	h.NoContent(w)
}

// Offerings, scoped under a degree

func (h *AcademicHandler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	var input models.OfferingInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	offering := &models.Offering{
		DegreeID: degreeID,
		Semester: input.Semester,
		Batch:    input.Batch,
		Courses:  input.Courses,
	}
	if err := h.offerings.Create(r.Context(), offering); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, Envelope{"data": Envelope{"offering": offering}})
}

func (h *AcademicHandler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	offerings, err := h.offerings.ListByDegree(r.Context(), degreeID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(offerings),
		"data":    Envelope{"offerings": offerings},
	})
}

func (h *AcademicHandler) GetOffering(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	id, err := h.URLParamUUID(r, "offeringID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	offering, err := h.offerings.GetByID(r.Context(), degreeID, id)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"offering": offering}})
}

func (h *AcademicHandler) UpdateOffering(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	id, err := h.URLParamUUID(r, "offeringID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	var input models.OfferingInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.offerings.Update(r.Context(), degreeID, id, input); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"message": "offering updated"})
}

func (h *AcademicHandler) DeleteOffering(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	id, err := h.URLParamUUID(r, "offeringID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.offerings.Delete(r.Context(), degreeID, id); err != nil {
		h.Error(w, r, err)
		return
	}
	h.NoContent(w)
}

// Joinings, scoped under a degree

// CreateJoining enrolls the session student into a degree.
func (h *AcademicHandler) CreateJoining(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	user := h.CurrentUser(r)
	if user.Role != models.RoleStudent {
		h.Error(w, r, apperrors.Forbidden("only students can join a degree"))
		return
	}

	var input models.JoiningInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	joining := &models.Joining{
		DegreeID:  degreeID,
		StudentID: user.ID,
		Courses:   input.Courses,
	}
	if err := h.joinings.Create(r.Context(), joining); err != nil {
		h.Error(w, r, err)
		return
	}
	h.Created(w, Envelope{"data": Envelope{"joining": joining}})
}

func (h *AcademicHandler) ListJoinings(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	joinings, err := h.joinings.ListByDegree(r.Context(), degreeID)
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(joinings),
		"data":    Envelope{"joinings": joinings},
	})
}

func (h *AcademicHandler) GetJoining(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	id, err := h.URLParamUUID(r, "joiningID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	joining, err := h.joinings.GetByID(r.Context(), degreeID, id)
	if err != nil {
		h.Error(w, r, err)
		return
	}

	// Students may only read their own joining.
	user := h.CurrentUser(r)
	if user.Role == models.RoleStudent && joining.StudentID != user.ID {
		h.Error(w, r, apperrors.Forbidden("you can only view your own enrollment"))
		return
	}
	h.OK(w, Envelope{"data": Envelope{"joining": joining}})
}

func (h *AcademicHandler) DeleteJoining(w http.ResponseWriter, r *http.Request) {
	degreeID, err := h.URLParamUUID(r, "degreeID")
	if err != nil {
		h.Error(w, r, err)
		return
	}
	id, err := h.URLParamUUID(r, "joiningID")
	if err != nil {
		h.Error(w, r, err)
		return
	}

	if err := h.joinings.Delete(r.Context(), degreeID, id); err != nil {
		h.Error(w, r, err)
		return
	}
	h.NoContent(w)
}
