// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package api provides the HTTP server and routing for campuskit.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	apierrors "github.com/campuskit/campuskit/internal/api/errors"
	"github.com/campuskit/campuskit/internal/api/handlers"
	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/models"
	"github.com/campuskit/campuskit/internal/pkg/logger"
)

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	CORSConfig middleware.CORSConfig

	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration

	// GlobalRateLimit is the per-IP request ceiling per minute. Zero
	// disables the global limiter.
	GlobalRateLimit int

	Logger *logger.Logger
}

// DefaultRouterConfig returns sensible routing defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CORSConfig:      middleware.DefaultCORSConfig(),
		RequestTimeout:  30 * time.Second,
		GlobalRateLimit: 300,
	}
}

// Handlers bundles every route handler the router mounts.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Users    *handlers.UserHandler
	Academic *handlers.AcademicHandler
	Media    *handlers.MediaHandler
	Health   *handlers.HealthHandler
}

// NewRouter builds the chi router with the full middleware stack and all
// API routes mounted under /api/v1.
func NewRouter(config RouterConfig, guard *middleware.SessionGuard, h *Handlers) chi.Router {
	if config.Logger == nil {
		config.Logger = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(config.Logger))
	r.Use(middleware.Recovery(config.Logger))
	r.Use(middleware.CORS(config.CORSConfig))
	if config.GlobalRateLimit > 0 {
		r.Use(middleware.RateLimitByIP(config.GlobalRateLimit, time.Minute))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierrors.Write(w, apierrors.NotFound("route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apierrors.Write(w, apierrors.MethodNotAllowed())
	})

	if h.Health != nil {
		r.Get("/healthz", h.Health.Live)
		r.Get("/readyz", h.Health.Ready)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if config.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(config.RequestTimeout))
		}

		r.Route("/users", func(r chi.Router) {
			// Public routes, with a tighter limiter on credential endpoints.
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRateLimit())
				r.Post("/signup", h.Auth.Signup)
				r.Post("/login", h.Auth.Login)
				r.Post("/forgotPassword", h.Auth.ForgotPassword)
				r.Patch("/resetPassword/{resetToken}", h.Auth.ResetPassword)
			})
			r.Get("/verifyAccount/{verifyToken}", h.Auth.VerifyAccount)
			r.Patch("/verifyRefreshToken", h.Auth.Refresh)

			// Session required; a pending two-factor challenge is allowed
			// so the user can finish or retry it.
			r.Group(func(r chi.Router) {
				r.Use(guard.Authenticate)
				r.Post("/updatePassword", h.Auth.ChangePassword)
				r.Patch("/enableTwoFactorAuthentication", h.Auth.EnableTwoFactor)
				r.Get("/generateNewCode", h.Auth.RegenerateCode)
				r.Patch("/oneTimeToken/{token}", h.Auth.VerifyTwoFactorCode)
				r.Get("/oneTimeToken/{token}", h.Auth.VerifyTwoFactorCode)
			})

			// Session plus a cleared two-factor challenge.
			r.Group(func(r chi.Router) {
				r.Use(guard.Authenticate)
				r.Use(middleware.RequireTwoFactorVerified)
				r.Get("/me", h.Users.Me)
				r.Post("/completeProfile", h.Users.CompleteProfile)

				r.With(middleware.RequireRole(models.RoleTeacher)).
					Get("/", h.Users.List)
			})
		})

		// Academic resources: every route needs a verified session and
		// mutations are restricted to staff.
		r.Group(func(r chi.Router) {
			r.Use(guard.Authenticate)
			r.Use(middleware.RequireTwoFactorVerified)

			staff := middleware.RequireStaff

			r.Route("/departments", func(r chi.Router) {
				r.Get("/", h.Academic.ListDepartments)
				r.Get("/{departmentID}", h.Academic.GetDepartment)
				r.With(staff).Post("/", h.Academic.CreateDepartment)
				r.With(staff).Patch("/{departmentID}", h.Academic.UpdateDepartment)
				r.With(staff).Delete("/{departmentID}", h.Academic.DeleteDepartment)
			})

			r.Route("/courses", func(r chi.Router) {
				r.Get("/", h.Academic.ListCourses)
				r.Get("/{courseID}", h.Academic.GetCourse)
				r.With(staff).Post("/", h.Academic.CreateCourse)
				r.With(staff).Patch("/{courseID}", h.Academic.UpdateCourse)
				r.With(staff).Delete("/{courseID}", h.Academic.DeleteCourse)
			})

			r.Route("/degrees", func(r chi.Router) {
				r.Get("/", h.Academic.ListDegrees)
				r.With(staff).Post("/", h.Academic.CreateDegree)

				r.Route("/{degreeID}", func(r chi.Router) {
					r.Get("/", h.Academic.GetDegree)
					r.With(staff).Patch("/", h.Academic.UpdateDegree)
					r.With(staff).Delete("/", h.Academic.DeleteDegree)

					r.Route("/offerings", func(r chi.Router) {
						r.Get("/", h.Academic.ListOfferings)
						r.Get("/{offeringID}", h.Academic.GetOffering)
						r.With(staff).Post("/", h.Academic.CreateOffering)
						r.With(staff).Patch("/{offeringID}", h.Academic.UpdateOffering)
						r.With(staff).Delete("/{offeringID}", h.Academic.DeleteOffering)
					})

					r.Route("/joinings", func(r chi.Router) {
						r.Post("/", h.Academic.CreateJoining)
						r.Get("/{joiningID}", h.Academic.GetJoining)
						r.With(staff).Get("/", h.Academic.ListJoinings)
						r.With(staff).Delete("/{joiningID}", h.Academic.DeleteJoining)
					})
				})
			})

			if h.Media != nil {
				r.Get("/media/{folder}/{file}", h.Media.Get)
			}
		})
	})

	return r
}
