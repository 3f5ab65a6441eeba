// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package crypto

import (
	"strings"
	"testing"
)

func TestValidatePassword_Accepts(t *testing.T) {
	policy := DefaultPasswordPolicy()

	valid := []string{
		"Abcdef1!",
		"C0mpl3x#Password",
		"xY9$aaaa",
	}
	for _, pw := range valid {
		if res := policy.ValidatePassword(pw); !res.Valid {
			t.Errorf("ValidatePassword(%q) rejected: %v", pw, res.Errors)
		}
	}
}

func TestValidatePassword_Rejects(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"too short", "Ab1!x", "at least 8"},
		{"no uppercase", "abcdef1!", "uppercase"},
		{"no lowercase", "ABCDEF1!", "lowercase"},
		{"no digit", "Abcdefg!", "digit"},
		{"no special", "Abcdefg1", "special"},
		{"whitespace", "Abcd ef1!", "whitespace"},
		{"too long", "A1!" + strings.Repeat("a", 130), "at most 128"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := policy.ValidatePassword(tt.password)
			if res.Valid {
				t.Fatalf("ValidatePassword(%q) should fail", tt.password)
			}
			found := false
			for _, e := range res.Errors {
				if strings.Contains(e, tt.wantErr) {
					found = true
				}
			}
			if !found {
				t.Errorf("errors %v should mention %q", res.Errors, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword_CollectsAllViolations(t *testing.T) {
	policy := DefaultPasswordPolicy()

	res := policy.ValidatePassword("abc")
	if res.Valid {
		t.Fatal("ValidatePassword(\"abc\") should fail")
	}
	// short + no upper + no digit + no special
	if len(res.Errors) < 4 {
		t.Errorf("expected all violations reported, got %d: %v", len(res.Errors), res.Errors)
	}
}
