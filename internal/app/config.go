// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package app wires configuration, dependencies and lifecycle for the
// campuskit server.
package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
	CORSOrigins     string        `mapstructure:"cors_origins"`
	FrontendURL     string        `mapstructure:"frontend_url"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Migrate         bool          `mapstructure:"migrate"`
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// LoginAttemptLimit caps credential attempts per identity inside
	// LoginAttemptWindow. Zero disables throttling.
	LoginAttemptLimit  int           `mapstructure:"login_attempt_limit"`
	LoginAttemptWindow time.Duration `mapstructure:"login_attempt_window"`
}

// AuthConfig holds token signing configuration.
type AuthConfig struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	Issuer        string        `mapstructure:"issuer"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

// SMTPConfig holds outbound mail configuration.
type SMTPConfig struct {
	Host        string        `mapstructure:"host"`
	Port        int           `mapstructure:"port"`
	Username    string        `mapstructure:"username"`
	Password    string        `mapstructure:"password"`
	UseTLS      bool          `mapstructure:"use_tls"`
	UseSSL      bool          `mapstructure:"use_ssl"`
	SkipVerify  bool          `mapstructure:"skip_verify"`
	FromAddress string        `mapstructure:"from_address"`
	FromName    string        `mapstructure:"from_name"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// StorageConfig holds S3-compatible object storage configuration for
// uploaded media. Leaving the bucket empty disables the media routes.
type StorageConfig struct {
	Bucket       string `mapstructure:"bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// LoadConfig loads configuration from file and environment.
func LoadConfig(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/campuskit")
		v.AddConfigPath("$HOME/.campuskit")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CAMPUSKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Dual-binding: CAMPUSKIT_ prefixed (canonical) + unprefixed for
	// container platforms that inject bare names. BindEnv picks the
	// first one set.
	_ = v.BindEnv("database.url", "CAMPUSKIT_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("redis.url", "CAMPUSKIT_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("auth.access_secret", "CAMPUSKIT_ACCESS_SECRET", "JWT_ACCESS_SECRET")
	_ = v.BindEnv("auth.refresh_secret", "CAMPUSKIT_REFRESH_SECRET", "JWT_REFRESH_SECRET")
	_ = v.BindEnv("smtp.password", "CAMPUSKIT_SMTP_PASSWORD", "SMTP_PASSWORD")
	_ = v.BindEnv("storage.access_key", "CAMPUSKIT_STORAGE_ACCESS_KEY", "S3_ACCESS_KEY")
	_ = v.BindEnv("storage.secret_key", "CAMPUSKIT_STORAGE_SECRET_KEY", "S3_SECRET_KEY")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file, proceed with env vars and defaults.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit_per_min", 300)
	v.SetDefault("server.cors_origins", "*")
	v.SetDefault("server.frontend_url", "http://localhost:3000")

	// Database
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("database.migrate", true)

	// Redis
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 5)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")
	v.SetDefault("redis.login_attempt_limit", 10)
	v.SetDefault("redis.login_attempt_window", "15m")

	// Auth
	v.SetDefault("auth.issuer", "campuskit")
	v.SetDefault("auth.access_ttl", "15m")
	v.SetDefault("auth.refresh_ttl", "168h")

	// SMTP
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("smtp.from_name", "campuskit")
	v.SetDefault("smtp.timeout", "30s")

	// Storage
	v.SetDefault("storage.region", "us-east-1")

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// Validate checks the configuration, collecting every problem so the
// operator can fix them in one pass.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.URL == "" {
		errs = append(errs, "database.url is required")
	}
	if c.Redis.URL == "" && c.Redis.LoginAttemptLimit > 0 {
		errs = append(errs, "redis.url is required when login throttling is enabled")
	}

	if c.Auth.AccessSecret == "" {
		errs = append(errs, "auth.access_secret is required")
	} else if len(c.Auth.AccessSecret) < 32 {
		errs = append(errs, "auth.access_secret must be at least 32 characters")
	}
	if c.Auth.RefreshSecret == "" {
		errs = append(errs, "auth.refresh_secret is required")
	} else if len(c.Auth.RefreshSecret) < 32 {
		errs = append(errs, "auth.refresh_secret must be at least 32 characters")
	}
	if c.Auth.AccessSecret != "" && c.Auth.AccessSecret == c.Auth.RefreshSecret {
		errs = append(errs, "auth.access_secret and auth.refresh_secret must differ")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	if c.SMTP.Host != "" && c.SMTP.FromAddress == "" {
		errs = append(errs, "smtp.from_address is required when smtp.host is set")
	}
	if c.Storage.Bucket != "" && (c.Storage.AccessKey == "" || c.Storage.SecretKey == "") {
		errs = append(errs, "storage credentials are required when storage.bucket is set")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level %q is invalid", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Sprintf("logging.format %q is invalid", c.Logging.Format))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
}
