// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campuskit/campuskit/internal/api/handlers"
	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/models"
	apperrors "github.com/campuskit/campuskit/internal/pkg/errors"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/services/auth"
)

// stubUserStore backs both the session guard and the user handler.
type stubUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newStubUserStore(users ...*models.User) *stubUserStore {
	s := &stubUserStore{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, apperrors.NotFound("user")
}

func (s *stubUserStore) SetTwoFactorStatus(_ context.Context, id uuid.UUID, status models.TwoFactorStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.TwoFactorStatus = status
	}
	return nil
}

func (s *stubUserStore) List(_ context.Context) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (s *stubUserStore) SetProfileCompleted(_ context.Context, id uuid.UUID) error { return nil }

type stubProfileStore struct{}

func (stubProfileStore) UpsertStudent(_ context.Context, _ *models.StudentProfile) error { return nil }
func (stubProfileStore) GetStudent(_ context.Context, _ uuid.UUID) (*models.StudentProfile, error) {
	return nil, apperrors.NotFound("student profile")
}
func (stubProfileStore) UpsertTeacher(_ context.Context, _ *models.TeacherProfile) error { return nil }
func (stubProfileStore) GetTeacher(_ context.Context, _ uuid.UUID) (*models.TeacherProfile, error) {
	return nil, apperrors.NotFound("teacher profile")
}

type stubDepartmentStore struct{}

func (stubDepartmentStore) Create(_ context.Context, d *models.Department) error {
	d.ID = uuid.New()
	return nil
}
func (stubDepartmentStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Department, error) {
	return nil, apperrors.NotFound("department")
}
func (stubDepartmentStore) List(_ context.Context) ([]*models.Department, error) { return nil, nil }
func (stubDepartmentStore) Update(_ context.Context, _ uuid.UUID, _ models.DepartmentInput) error {
	return nil
}
func (stubDepartmentStore) Delete(_ context.Context, _ uuid.UUID) error { return nil }

type stubCourseStore struct{}

func (stubCourseStore) Create(_ context.Context, c *models.Course) error { return nil }
func (stubCourseStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Course, error) {
	return nil, apperrors.NotFound("course")
}
func (stubCourseStore) List(_ context.Context) ([]*models.Course, error)             { return nil, nil }
func (stubCourseStore) Update(_ context.Context, _ uuid.UUID, _ models.CourseInput) error { return nil }
func (stubCourseStore) Delete(_ context.Context, _ uuid.UUID) error                  { return nil }

type stubDegreeStore struct{}

func (stubDegreeStore) Create(_ context.Context, d *models.Degree) error { return nil }
func (stubDegreeStore) GetByID(_ context.Context, _ uuid.UUID) (*models.Degree, error) {
	return nil, apperrors.NotFound("degree")
}
func (stubDegreeStore) List(_ context.Context) ([]*models.Degree, error)             { return nil, nil }
func (stubDegreeStore) Update(_ context.Context, _ uuid.UUID, _ models.DegreeInput) error { return nil }
func (stubDegreeStore) Delete(_ context.Context, _ uuid.UUID) error                  { return nil }

type stubOfferingStore struct{}

func (stubOfferingStore) Create(_ context.Context, _ *models.Offering) error { return nil }
func (stubOfferingStore) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Offering, error) {
	return nil, apperrors.NotFound("offering")
}
func (stubOfferingStore) ListByDegree(_ context.Context, _ uuid.UUID) ([]*models.Offering, error) {
	return nil, nil
}
func (stubOfferingStore) Update(_ context.Context, _, _ uuid.UUID, _ models.OfferingInput) error {
	return nil
}
func (stubOfferingStore) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

type stubJoiningStore struct{}

func (stubJoiningStore) Create(_ context.Context, _ *models.Joining) error { return nil }
func (stubJoiningStore) GetByID(_ context.Context, _, _ uuid.UUID) (*models.Joining, error) {
	return nil, apperrors.NotFound("joining")
}
func (stubJoiningStore) ListByDegree(_ context.Context, _ uuid.UUID) ([]*models.Joining, error) {
	return nil, nil
}
func (stubJoiningStore) Delete(_ context.Context, _, _ uuid.UUID) error { return nil }

type routerFixture struct {
	router http.Handler
	codec  *auth.TokenCodec
	store  *stubUserStore
}

func newRouterFixture(t *testing.T, users ...*models.User) *routerFixture {
	t.Helper()

	codec, err := auth.NewTokenCodec(auth.DefaultTokenConfig("access-secret", "refresh-secret"))
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	store := newStubUserStore(users...)
	log := logger.Nop()

	guard := middleware.NewSessionGuard(codec, store, log)
	h := &Handlers{
		Users: handlers.NewUserHandler(store, stubProfileStore{}, log),
		Academic: handlers.NewAcademicHandler(
			stubDepartmentStore{}, stubCourseStore{}, stubDegreeStore{},
			stubOfferingStore{}, stubJoiningStore{}, log),
		Health: handlers.NewHealthHandler("test", log),
	}

	config := DefaultRouterConfig()
	config.Logger = log
	config.GlobalRateLimit = 0

	return &routerFixture{
		router: newUsersOnlyRouter(config, guard, h),
		codec:  codec,
		store:  store,
	}
}

// newUsersOnlyRouter mounts the real router minus the auth handler, whose
// routes are exercised in the handlers package.
func newUsersOnlyRouter(config RouterConfig, guard *middleware.SessionGuard, h *Handlers) http.Handler {
	if h.Auth == nil {
		h.Auth = &handlers.AuthHandler{}
	}
	return NewRouter(config, guard, h)
}

func (fx *routerFixture) do(t *testing.T, method, target string, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if user != nil {
		token, err := fx.codec.Issue(user.ID, auth.TokenKindAccess)
		if err != nil {
			t.Fatalf("issuing token: %v", err)
		}
		req.Header.Set(middleware.AuthorizationHeader, middleware.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func respCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	return out.Code
}

func verifiedUser(role models.Role) *models.User {
	return &models.User{
		ID:        uuid.New(),
		Role:      role,
		Name:      "Router Test",
		Email:     string(role) + "@campus.edu",
		Status:    models.AccountVerified,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRouter_Health(t *testing.T) {
	fx := newRouterFixture(t)

	rec := fx.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	rec = fx.do(t, http.MethodGet, "/readyz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	fx := newRouterFixture(t)

	rec := fx.do(t, http.MethodGet, "/api/v1/nothing-here", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if code := respCode(t, rec); code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", code)
	}
}

func TestRouter_ListUsersRequiresSession(t *testing.T) {
	fx := newRouterFixture(t)

	rec := fx.do(t, http.MethodGet, "/api/v1/users/", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	if code := respCode(t, rec); code != "TOKEN_MISSING" {
		t.Errorf("code = %q, want TOKEN_MISSING", code)
	}
}

func TestRouter_ListUsersTeacherOnly(t *testing.T) {
	teacher := verifiedUser(models.RoleTeacher)
	student := verifiedUser(models.RoleStudent)
	fx := newRouterFixture(t, teacher, student)

	rec := fx.do(t, http.MethodGet, "/api/v1/users/", teacher)
	if rec.Code != http.StatusOK {
		t.Fatalf("teacher status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodGet, "/api/v1/users/", student)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student status = %d, want 403", rec.Code)
	}
	if code := respCode(t, rec); code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", code)
	}
}

func TestRouter_TwoFactorGate(t *testing.T) {
	pending := verifiedUser(models.RoleTeacher)
	pending.TwoFactorEnabled = true
	pending.TwoFactorStatus = models.TwoFactorNotVerified
	fx := newRouterFixture(t, pending)

	rec := fx.do(t, http.MethodGet, "/api/v1/users/me", pending)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
	if code := respCode(t, rec); code != "TWO_FACTOR_REQUIRED" {
		t.Errorf("code = %q, want TWO_FACTOR_REQUIRED", code)
	}

	fx.store.users[pending.ID].TwoFactorStatus = models.TwoFactorVerified
	rec = fx.do(t, http.MethodGet, "/api/v1/users/me", pending)
	if rec.Code != http.StatusOK {
		t.Fatalf("verified status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_AcademicMutationsStaffOnly(t *testing.T) {
	student := verifiedUser(models.RoleStudent)
	teacher := verifiedUser(models.RoleTeacher)
	fx := newRouterFixture(t, student, teacher)

	rec := fx.do(t, http.MethodDelete, "/api/v1/departments/"+uuid.NewString(), student)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student delete status = %d, want 403", rec.Code)
	}

	rec = fx.do(t, http.MethodGet, "/api/v1/departments/", student)
	if rec.Code != http.StatusOK {
		t.Fatalf("student list status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = fx.do(t, http.MethodDelete, "/api/v1/departments/"+uuid.NewString(), teacher)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("teacher delete status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}
