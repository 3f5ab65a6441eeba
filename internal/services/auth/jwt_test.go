// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(DefaultTokenConfig("access-secret-for-tests", "refresh-secret-for-tests"))
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}
	return codec
}

func TestNewTokenCodec_RequiresSecrets(t *testing.T) {
	if _, err := NewTokenCodec(TokenConfig{AccessSecret: "a"}); err == nil {
		t.Error("missing refresh secret should fail")
	}
	if _, err := NewTokenCodec(TokenConfig{RefreshSecret: "r"}); err == nil {
		t.Error("missing access secret should fail")
	}
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)
	userID := uuid.New()

	for _, kind := range []TokenKind{TokenKindAccess, TokenKindRefresh} {
		token, err := codec.Issue(userID, kind)
		if err != nil {
			t.Fatalf("Issue(%s) error: %v", kind, err)
		}
		if strings.Count(token, ".") != 2 {
			t.Errorf("token should have three JWT segments, got %q", token)
		}

		claim, err := codec.Verify(token, kind)
		if err != nil {
			t.Fatalf("Verify(%s) error: %v", kind, err)
		}
		if claim.UserID != userID {
			t.Errorf("UserID = %s, want %s", claim.UserID, userID)
		}
		if time.Since(claim.IssuedAt) > time.Minute {
			t.Errorf("IssuedAt too old: %s", claim.IssuedAt)
		}
	}
}

func TestTokenCodec_KindMismatch(t *testing.T) {
	codec := newTestCodec(t)

	access, err := codec.Issue(uuid.New(), TokenKindAccess)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := codec.Verify(access, TokenKindRefresh); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("access token verified as refresh: err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodec_WrongSecret(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewTokenCodec(DefaultTokenConfig("different-secret", "different-refresh"))
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}

	token, err := codec.Issue(uuid.New(), TokenKindAccess)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := other.Verify(token, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("Verify() with wrong secret: err = %v, want ErrTokenInvalid", err)
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	config := DefaultTokenConfig("access-secret-for-tests", "refresh-secret-for-tests")
	config.AccessTTL = -time.Minute
	codec, err := NewTokenCodec(config)
	if err != nil {
		t.Fatalf("NewTokenCodec() error: %v", err)
	}

	token, err := codec.Issue(uuid.New(), TokenKindAccess)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := codec.Verify(token, TokenKindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() on expired token: err = %v, want ErrTokenExpired", err)
	}
}

func TestTokenCodec_Garbage(t *testing.T) {
	codec := newTestCodec(t)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := codec.Verify(tok, TokenKindAccess); !errors.Is(err, ErrTokenInvalid) {
			t.Errorf("Verify(%q): err = %v, want ErrTokenInvalid", tok, err)
		}
	}
}

func TestTokenCodec_IssuePair(t *testing.T) {
	codec := newTestCodec(t)
	userID := uuid.New()

	access, refresh, err := codec.IssuePair(userID)
	if err != nil {
		t.Fatalf("IssuePair() error: %v", err)
	}
	if access == refresh {
		t.Error("access and refresh tokens should differ")
	}
	if _, err := codec.Verify(access, TokenKindAccess); err != nil {
		t.Errorf("access token invalid: %v", err)
	}
	if _, err := codec.Verify(refresh, TokenKindRefresh); err != nil {
		t.Errorf("refresh token invalid: %v", err)
	}
}
