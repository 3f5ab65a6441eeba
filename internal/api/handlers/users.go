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

// UserStore is the user persistence surface the handler needs.
type UserStore interface {
	List(ctx context.Context) ([]*models.User, error)
	SetProfileCompleted(ctx context.Context, id uuid.UUID) error
}

// ProfileStore persists role-specific academic profiles.
type ProfileStore interface {
	UpsertStudent(ctx context.Context, p *models.StudentProfile) error
	GetStudent(ctx context.Context, userID uuid.UUID) (*models.StudentProfile, error)
	UpsertTeacher(ctx context.Context, p *models.TeacherProfile) error
	GetTeacher(ctx context.Context, userID uuid.UUID) (*models.TeacherProfile, error)
}

// UserHandler serves the user listing and profile completion routes.
type UserHandler struct {
	BaseHandler
	users    UserStore
	profiles ProfileStore
}

// NewUserHandler creates the user handler.
func NewUserHandler(users UserStore, profiles ProfileStore, log *logger.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(log.Named("users")),
		users:       users,
		profiles:    profiles,
	}
}

// List handles GET /api/v1/users. Secret fields never leave the model
// layer, they are tagged json:"-".
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{
		"results": len(users),
		"data":    Envelope{"users": users},
	})
}

// Me handles GET /api/v1/users/me, returning the session user with their
// academic profile when one exists.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.CurrentUser(r)
	env := Envelope{"data": Envelope{"user": user}}

	switch user.Role {
	case models.RoleStudent:
		if profile, err := h.profiles.GetStudent(r.Context(), user.ID); err == nil {
			env["data"].(Envelope)["profile"] = profile
		} else if !apperrors.IsNotFoundError(err) {
			h.Error(w, r, err)
			return
		}
	case models.RoleTeacher:
		if profile, err := h.profiles.GetTeacher(r.Context(), user.ID); err == nil {
			env["data"].(Envelope)["profile"] = profile
		} else if !apperrors.IsNotFoundError(err) {
			h.Error(w, r, err)
			return
		}
	}

	h.OK(w, env)
}

// CompleteProfile handles POST /api/v1/users/completeProfile. The body
// shape depends on the session user's role.
func (h *UserHandler) CompleteProfile(w http.ResponseWriter, r *http.Request) {
	user := h.CurrentUser(r)

	switch user.Role {
	case models.RoleStudent:
		h.completeStudentProfile(w, r, user)
	case models.RoleTeacher:
		h.completeTeacherProfile(w, r, user)
	default:
		h.Error(w, r, apperrors.Validation("administrators do not have academic profiles"))
	}
}

func (h *UserHandler) completeStudentProfile(w http.ResponseWriter, r *http.Request, user *models.User) {
	var input models.StudentProfileInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	profile := &models.StudentProfile{
		UserID:             user.ID,
		DegreeID:           input.DegreeID,
		RegistrationNumber: user.RegistrationNumber,
		Batch:              input.Batch,
		CurrentSemester:    input.CurrentSemester,
		Courses:            input.Courses,
	}
	if err := h.profiles.UpsertStudent(r.Context(), profile); err != nil {
		h.Error(w, r, err)
		return
	}
	if err := h.users.SetProfileCompleted(r.Context(), user.ID); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"profile": profile}})
}

func (h *UserHandler) completeTeacherProfile(w http.ResponseWriter, r *http.Request, user *models.User) {
	var input models.TeacherProfileInput
	if err := h.ParseJSON(r, &input); err != nil {
		h.Error(w, r, err)
		return
	}

	profile := &models.TeacherProfile{
		UserID:      user.ID,
		EmployeeID:  input.EmployeeID,
		Designation: input.Designation,
		Courses:     input.Courses,
	}
	if err := h.profiles.UpsertTeacher(r.Context(), profile); err != nil {
		h.Error(w, r, err)
		return
	}
	if err := h.users.SetProfileCompleted(r.Context(), user.ID); err != nil {
		h.Error(w, r, err)
		return
	}
	h.OK(w, Envelope{"data": Envelope{"profile": profile}})
}
