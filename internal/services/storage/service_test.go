// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

package storage

import (
	"context"
	"testing"
)

func TestObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		folder  string
		file    string
		want    string
		wantErr bool
	}{
		{"simple", "avatars", "default.jpeg", "avatars/default.jpeg", false},
		{"nested folder", "documents/2026", "transcript.pdf", "documents/2026/transcript.pdf", false},
		{"leading slashes trimmed", "/avatars/", "/me.png", "avatars/me.png", false},
		{"traversal rejected", "avatars", "../secrets.env", "", true},
		{"dot dot folder", "..", "x.png", "", true},
		{"empty folder", "", "x.png", "", true},
		{"empty file", "avatars", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := objectKey(tt.folder, tt.file)
			if tt.wantErr {
				if err == nil {
					t.Errorf("objectKey(%q, %q) should fail", tt.folder, tt.file)
				}
				return
			}
			if err != nil {
				t.Fatalf("objectKey() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("objectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}, nil); err == nil {
		t.Error("New() should reject an empty bucket")
	}
}
