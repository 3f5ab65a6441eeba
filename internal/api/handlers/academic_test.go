// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
)

type mockDepartmentStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Department
}

func newMockDepartmentStore() *mockDepartmentStore {
	return &mockDepartmentStore{rows: make(map[uuid.UUID]*models.Department)}
}

func (m *mockDepartmentStore) Create(_ context.Context, d *models.Department) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.rows[d.ID] = &cp
	return nil
}

func (m *mockDepartmentStore) GetByID(_ context.Context, id uuid.UUID) (*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.rows[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperrors.NotFound("department")
}

func (m *mockDepartmentStore) List(_ context.Context) ([]*models.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Department, 0, len(m.rows))
	for _, d := range m.rows {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (m *mockDepartmentStore) Update(_ context.Context, id uuid.UUID, input models.DepartmentInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.rows[id]
	if !ok {
		return apperrors.NotFound("department")
	}
	d.Name = input.Name
	d.Faculty = input.Faculty
	return nil
}

func (m *mockDepartmentStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return apperrors.NotFound("department")
	}
	delete(m.rows, id)
	return nil
}

type mockCourseStore struct{}

func (mockCourseStore) Create(_ context.Context, c *models.Course) error {
	c.ID = uuid.New()
	return nil
}
func (mockCourseStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Course, error) {
	return nil, apperrors.NotFound("course")
}
func (mockCourseStore) List(_ context.Context) ([]*models.Course, error) { return nil, nil }
func (mockCourseStore) Update(_ context.Context, _ uuid.UUID, _ models.CourseInput) error {
	return nil
}
func (mockCourseStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type mockDegreeStore struct{}

func (mockDegreeStore) Create(_ context.Context, d *models.Degree) error {
	d.ID = uuid.New()
	return nil
}
func (mockDegreeStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Degree, error) {
	return nil, apperrors.NotFound("degree")
}
func (mockDegreeStore) List(_ context.Context) ([]*models.Degree, error) { return nil, nil }
func (mockDegreeStore) Update(_ context.Context, _ uuid.UUID, _ models.DegreeInput) error {
	return nil
}
func (mockDegreeStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type mockOfferingStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Offering
}

func newMockOfferingStore() *mockOfferingStore {
	return &mockOfferingStore{rows: make(map[uuid.UUID]*models.Offering)}
}

func (m *mockOfferingStore) Create(_ context.Context, o *models.Offering) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.New()
	cp := *o
	m.rows[o.ID] = &cp
	return nil
}

func (m *mockOfferingStore) GetByID(_ context.Context, degreeID, id uuid.UUID) (*models.Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.rows[id]; ok && o.DegreeID == degreeID {
		cp := *o
		return &cp, nil
	}
	return nil, apperrors.NotFound("offering")
}

func (m *mockOfferingStore) ListByDegree(_ context.Context, degreeID uuid.UUID) ([]*models.Offering, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Offering
	for _, o := range m.rows {
		if o.DegreeID == degreeID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockOfferingStore) Update(_ context.Context, degreeID, id uuid.UUID, input models.OfferingInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.rows[id]
	if !ok || o.DegreeID != degreeID {
		return apperrors.NotFound("offering")
	}
	o.Semester = input.Semester
	o.Batch = input.Batch
	o.Courses = input.Courses
	return nil
}

func (m *mockOfferingStore) Delete(_ context.Context, degreeID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.rows[id]; ok && o.DegreeID == degreeID {
		delete(m.rows, id)
		return nil
	}
	return apperrors.NotFound("offering")
}

type mockJoiningStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.Joining
}

func newMockJoiningStore() *mockJoiningStore {
	return &mockJoiningStore{rows: make(map[uuid.UUID]*models.Joining)}
}

func (m *mockJoiningStore) Create(_ context.Context, j *models.Joining) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j.ID = uuid.New()
	cp := *j
	m.rows[j.ID] = &cp
	return nil
}

func (m *mockJoiningStore) GetByID(_ context.Context, degreeID, id uuid.UUID) (*models.Joining, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.rows[id]; ok && j.DegreeID == degreeID {
		cp := *j
		return &cp, nil
	}
	return nil, apperrors.NotFound("joining")
}

func (m *mockJoiningStore) ListByDegree(_ context.Context, degreeID uuid.UUID) ([]*models.Joining, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Joining
	for _, j := range m.rows {
		if j.DegreeID == degreeID {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockJoiningStore) Delete(_ context.Context, degreeID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.rows[id]; ok && j.DegreeID == degreeID {
		delete(m.rows, id)
		return nil
	}
	return apperrors.NotFound("joining")
}

type academicFixture struct {
	handler     *AcademicHandler
	departments *mockDepartmentStore
	offerings   *mockOfferingStore
	joinings    *mockJoiningStore
}

func newAcademicFixture() *academicFixture {
	departments := newMockDepartmentStore()
	offerings := newMockOfferingStore()
	joinings := newMockJoiningStore()
	return &academicFixture{
		handler:     NewAcademicHandler(departments, mockCourseStore{}, mockDegreeStore{}, offerings, joinings, logger.Nop()),
		departments: departments,
		offerings:   offerings,
		joinings:    joinings,
	}
}

func TestAcademicHandler_CreateDepartment(t *testing.T) {
	fx := newAcademicFixture()

	req := newRequest(t, http.MethodPost, "/api/v1/departments", models.DepartmentInput{
		Name:    "Computer Science",
		Faculty: "Engineering",
	}, nil, testTeacher())
	rec := httptest.NewRecorder()
	fx.handler.CreateDepartment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["status"] != "success" {
		t.Errorf("status field = %v, want success", body["status"])
	}
	if len(fx.departments.rows) != 1 {
		t.Errorf("stored %d departments, want 1", len(fx.departments.rows))
	}
}

func TestAcademicHandler_CreateDepartment_Validation(t *testing.T) {
	fx := newAcademicFixture()

	req := newRequest(t, http.MethodPost, "/api/v1/departments", models.DepartmentInput{
		Name: "X",
	}, nil, testTeacher())
	rec := httptest.NewRecorder()
	fx.handler.CreateDepartment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if code := responseCode(t, rec); code != "VALIDATION" {
		t.Errorf("code = %q, want VALIDATION", code)
	}
	body := decodeBody(t, rec)
	if _, ok := body["errors"].(map[string]any); !ok {
		t.Errorf("expected field errors in response, got %v", body)
	}
}

func TestAcademicHandler_GetDepartment_NotFound(t *testing.T) {
	fx := newAcademicFixture()

	req := newRequest(t, http.MethodGet, "/api/v1/departments/"+uuid.NewString(), nil,
		map[string]string{"departmentID": uuid.NewString()}, testStudent())
	rec := httptest.NewRecorder()
	fx.handler.GetDepartment(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAcademicHandler_GetDepartment_BadID(t *testing.T) {
	fx := newAcademicFixture()

	req := newRequest(t, http.MethodGet, "/api/v1/departments/nope", nil,
		map[string]string{"departmentID": "nope"}, testStudent())
	rec := httptest.NewRecorder()
	fx.handler.GetDepartment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAcademicHandler_UpdateDepartment(t *testing.T) {
	fx := newAcademicFixture()
	dept := &models.Department{Name: "Physics", Faculty: "Science"}
	if err := fx.departments.Create(context.Background(), dept); err != nil {
		t.Fatal(err)
	}

	req := newRequest(t, http.MethodPatch, "/api/v1/departments/"+dept.ID.String(), models.DepartmentInput{
		Name:    "Applied Physics",
		Faculty: "Science",
	}, map[string]string{"departmentID": dept.ID.String()}, testTeacher())
	rec := httptest.NewRecorder()
	fx.handler.UpdateDepartment(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got := fx.departments.rows[dept.ID].Name; got != "Applied Physics" {
		t.Errorf("name after update = %q", got)
	}
}

func TestAcademicHandler_DeleteDepartment(t *testing.T) {
	fx := newAcademicFixture()
	dept := &models.Department{Name: "History", Faculty: "Arts"}
	if err := fx.departments.Create(context.Background(), dept); err != nil {
		t.Fatal(err)
	}

	req := newRequest(t, http.MethodDelete, "/api/v1/departments/"+dept.ID.String(), nil,
		map[string]string{"departmentID": dept.ID.String()}, testTeacher())
	rec := httptest.NewRecorder()
	fx.handler.DeleteDepartment(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if len(fx.departments.rows) != 0 {
		t.Errorf("department not deleted")
	}
}

func TestAcademicHandler_Offerings_DegreeScoped(t *testing.T) {
	fx := newAcademicFixture()
	degreeID := uuid.New()
	otherDegree := uuid.New()

	offering := &models.Offering{DegreeID: degreeID, Semester: 3, Batch: "2023", Courses: []uuid.UUID{uuid.New()}}
	if err := fx.offerings.Create(context.Background(), offering); err != nil {
		t.Fatal(err)
	}

	// Fetching through the wrong degree must miss.
	req := newRequest(t, http.MethodGet, "/x", nil, map[string]string{
		"degreeID":   otherDegree.String(),
		"offeringID": offering.ID.String(),
	}, testStudent())
	rec := httptest.NewRecorder()
	fx.handler.GetOffering(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-degree fetch status = %d, want 404", rec.Code)
	}

	req = newRequest(t, http.MethodGet, "/x", nil, map[string]string{
		"degreeID":   degreeID.String(),
		"offeringID": offering.ID.String(),
	}, testStudent())
	rec = httptest.NewRecorder()
	fx.handler.GetOffering(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("same-degree fetch status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAcademicHandler_CreateJoining_StudentOnly(t *testing.T) {
	fx := newAcademicFixture()
	degreeID := uuid.New()
	input := models.JoiningInput{Courses: []models.JoiningCourse{{CourseID: uuid.New(), Grade: models.GradeNil}}}

	req := newRequest(t, http.MethodPost, "/x", input,
		map[string]string{"degreeID": degreeID.String()}, testTeacher())
	rec := httptest.NewRecorder()
	fx.handler.CreateJoining(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("teacher joining status = %d, want 403", rec.Code)
	}

	student := testStudent()
	req = newRequest(t, http.MethodPost, "/x", input,
		map[string]string{"degreeID": degreeID.String()}, student)
	rec = httptest.NewRecorder()
	fx.handler.CreateJoining(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("student joining status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	for _, j := range fx.joinings.rows {
		if j.StudentID != student.ID {
			t.Errorf("joining student = %s, want session user %s", j.StudentID, student.ID)
		}
		if j.DegreeID != degreeID {
			t.Errorf("joining degree = %s, want %s", j.DegreeID, degreeID)
		}
	}
}

func TestAcademicHandler_GetJoining_OwnershipEnforced(t *testing.T) {
	fx := newAcademicFixture()
	owner := testStudent()
	degreeID := uuid.New()

	joining := &models.Joining{DegreeID: degreeID, StudentID: owner.ID}
	if err := fx.joinings.Create(context.Background(), joining); err != nil {
		t.Fatal(err)
	}
	params := map[string]string{
		"degreeID":  degreeID.String(),
		"joiningID": joining.ID.String(),
	}

	rec := httptest.NewRecorder()
	fx.handler.GetJoining(rec, newRequest(t, http.MethodGet, "/x", nil, params, owner))
	if rec.Code != http.StatusOK {
		t.Fatalf("owner read status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	fx.handler.GetJoining(rec, newRequest(t, http.MethodGet, "/x", nil, params, testStudent()))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("other student read status = %d, want 403", rec.Code)
	}

	// Staff may read any joining.
	rec = httptest.NewRecorder()
	fx.handler.GetJoining(rec, newRequest(t, http.MethodGet, "/x", nil, params, testTeacher()))
	if rec.Code != http.StatusOK {
		t.Fatalf("teacher read status = %d, want 200", rec.Code)
	}
}
