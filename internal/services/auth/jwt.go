// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package auth provides the authentication services for the application:
// the token codec and the account, session and two-factor use cases.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token codec errors.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// TokenKind discriminates access from refresh tokens so one can never be
// presented in place of the other.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// TokenConfig contains the codec configuration. Access and refresh
// tokens sign with independent secrets.
type TokenConfig struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// DefaultTokenConfig returns the codec defaults for the given secrets.
func DefaultTokenConfig(accessSecret, refreshSecret string) TokenConfig {
	return TokenConfig{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		Issuer:        "campuskit",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

// SessionClaim is the verified identity a token carries.
type SessionClaim struct {
	UserID   uuid.UUID
	IssuedAt time.Time
}

type tokenClaims struct {
	Kind TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 session tokens.
type TokenCodec struct {
	config TokenConfig
}

// NewTokenCodec creates a token codec. Both secrets are required.
func NewTokenCodec(config TokenConfig) (*TokenCodec, error) {
	if config.AccessSecret == "" || config.RefreshSecret == "" {
		return nil, fmt.Errorf("token codec: both secrets are required")
	}
	if config.Issuer == "" {
		config.Issuer = "campuskit"
	}
	if config.AccessTTL == 0 {
		config.AccessTTL = 15 * time.Minute
	}
	if config.RefreshTTL == 0 {
		config.RefreshTTL = 7 * 24 * time.Hour
	}
	return &TokenCodec{config: config}, nil
}

// Issue signs a token of the given kind for the user.
func (c *TokenCodec) Issue(userID uuid.UUID, kind TokenKind) (string, error) {
	secret, ttl, err := c.keyFor(kind)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	claims := &tokenClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    c.config.Issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// IssuePair signs an access/refresh token pair for the user.
func (c *TokenCodec) IssuePair(userID uuid.UUID) (access, refresh string, err error) {
	access, err = c.Issue(userID, TokenKindAccess)
	if err != nil {
		return "", "", err
	}
	refresh, err = c.Issue(userID, TokenKindRefresh)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

// Verify checks the signature, expiry and kind of a token and returns
// the session claim it carries. Expired tokens return ErrTokenExpired;
// every other failure returns ErrTokenInvalid.
func (c *TokenCodec) Verify(tokenString string, kind TokenKind) (*SessionClaim, error) {
	secret, _, err := c.keyFor(kind)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	if claims.IssuedAt == nil {
		return nil, ErrTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrTokenInvalid
	}

	return &SessionClaim{UserID: userID, IssuedAt: claims.IssuedAt.Time}, nil
}

func (c *TokenCodec) keyFor(kind TokenKind) (string, time.Duration, error) {
	switch kind {
	case TokenKindAccess:
		return c.config.AccessSecret, c.config.AccessTTL, nil
	case TokenKindRefresh:
		return c.config.RefreshSecret, c.config.RefreshTTL, nil
	default:
		return "", 0, fmt.Errorf("unknown token kind %q", kind)
	}
}
