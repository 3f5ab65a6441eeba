// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campuskit/campuskit/internal/api"
	"github.com/campuskit/campuskit/internal/api/handlers"
	"github.com/campuskit/campuskit/internal/api/middleware"
	"github.com/campuskit/campuskit/internal/pkg/logger"
	"github.com/campuskit/campuskit/internal/repository/postgres"
	"github.com/campuskit/campuskit/internal/repository/redis"
	"github.com/campuskit/campuskit/internal/services/auth"
	"github.com/campuskit/campuskit/internal/services/mailer"
	"github.com/campuskit/campuskit/internal/services/storage"
)

// App owns every long-lived dependency of the server process.
type App struct {
	config  *Config
	log     *logger.Logger
	db      *postgres.DB
	redis   *redis.Client
	server  *api.Server
	version string
}

// New builds the application: connects the stores, wires the services
// and assembles the HTTP server. Nothing is served until Run.
func New(ctx context.Context, cfg *Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}

	a := &App{config: cfg, log: log, version: version}
	if err := a.bootstrap(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) bootstrap(ctx context.Context) error {
	cfg := a.config

	db, err := postgres.New(ctx, cfg.Database.URL, postgres.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.db = db

	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		a.log.Info("database schema up to date")
	}

	if cfg.Redis.URL != "" {
		rc, err := redis.New(ctx, cfg.Redis.URL, redis.Options{
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		a.redis = rc
	}

	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		Issuer:        cfg.Auth.Issuer,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
	})
	if err != nil {
		return fmt.Errorf("initializing token codec: %w", err)
	}

	var mail auth.Mailer
	if cfg.SMTP.Host != "" {
		m, err := mailer.New(mailer.Config{
			Host:        cfg.SMTP.Host,
			Port:        cfg.SMTP.Port,
			Username:    cfg.SMTP.Username,
			Password:    cfg.SMTP.Password,
			UseTLS:      cfg.SMTP.UseTLS,
			UseSSL:      cfg.SMTP.UseSSL,
			SkipVerify:  cfg.SMTP.SkipVerify,
			FromAddress: cfg.SMTP.FromAddress,
			FromName:    cfg.SMTP.FromName,
			FrontendURL: cfg.Server.FrontendURL,
			Timeout:     cfg.SMTP.Timeout,
		}, a.log)
		if err != nil {
			return fmt.Errorf("initializing mailer: %w", err)
		}
		mail = m
	} else {
		a.log.Warn("smtp.host not set, challenge emails will only be logged")
		mail = &logMailer{log: a.log.Named("mailer")}
	}

	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewProfileRepository(db)

	authService := auth.NewService(userRepo, mail, codec, a.log)
	guard := middleware.NewSessionGuard(codec, userRepo, a.log)

	var throttle *redis.AttemptThrottle
	if a.redis != nil && cfg.Redis.LoginAttemptLimit > 0 {
		throttle = redis.NewAttemptThrottle(a.redis, cfg.Redis.LoginAttemptLimit, cfg.Redis.LoginAttemptWindow)
	}

	h := &api.Handlers{
		Auth: handlers.NewAuthHandler(authService, throttle, a.log),
		Users: handlers.NewUserHandler(userRepo, profileRepo, a.log),
		Academic: handlers.NewAcademicHandler(
			postgres.NewDepartmentRepository(db),
			postgres.NewCourseRepository(db),
			postgres.NewDegreeRepository(db),
			postgres.NewOfferingRepository(db),
			postgres.NewJoiningRepository(db),
			a.log,
		),
		Health: handlers.NewHealthHandler(a.version, a.log),
	}

	h.Health.Register("postgres", db.HealthCheck)
	if a.redis != nil {
		h.Health.Register("redis", a.redis.HealthCheck)
	}

	if cfg.Storage.Bucket != "" {
		media, err := storage.New(ctx, storage.Config{
			Bucket:       cfg.Storage.Bucket,
			Region:       cfg.Storage.Region,
			Endpoint:     cfg.Storage.Endpoint,
			AccessKey:    cfg.Storage.AccessKey,
			SecretKey:    cfg.Storage.SecretKey,
			UsePathStyle: cfg.Storage.UsePathStyle,
		}, a.log)
		if err != nil {
			return fmt.Errorf("initializing object storage: %w", err)
		}
		h.Media = handlers.NewMediaHandler(media, a.log)
	}

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Server.Host
	serverConfig.Port = cfg.Server.Port
	serverConfig.ReadTimeout = cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = cfg.Server.WriteTimeout
	serverConfig.IdleTimeout = cfg.Server.IdleTimeout
	serverConfig.ShutdownTimeout = cfg.Server.ShutdownTimeout
	serverConfig.Version = a.version
	serverConfig.Logger = a.log
	serverConfig.RouterConfig = api.RouterConfig{
		CORSConfig:      middleware.CORSFromOrigins(cfg.Server.CORSOrigins, true),
		RequestTimeout:  cfg.Server.RequestTimeout,
		GlobalRateLimit: cfg.Server.RateLimitPerMin,
	}

	a.server = api.NewServer(serverConfig, guard, h)
	return nil
}

// Run serves HTTP until the context is canceled or a termination signal
// arrives, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutdown signal received")
	if err := a.server.Shutdown(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// Close releases every connection the app holds.
func (a *App) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Warn("closing redis", "error", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// logMailer stands in for SMTP during development. Secrets are logged at
// debug so they never reach production log pipelines at default level.
type logMailer struct {
	log *logger.Logger
}

func (m *logMailer) SendVerificationEmail(_ context.Context, to, _, token string) error {
	m.log.Debug("verification email suppressed", "to", to, "token", token)
	return nil
}

func (m *logMailer) SendPasswordResetEmail(_ context.Context, to, _, token string) error {
	m.log.Debug("password reset email suppressed", "to", to, "token", token)
	return nil
}

func (m *logMailer) SendTwoFactorCode(_ context.Context, to, _, code string) error {
	m.log.Debug("two-factor email suppressed", "to", to, "code", code)
	return nil
}
