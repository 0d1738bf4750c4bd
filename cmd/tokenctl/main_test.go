package main

import (
	"context"
	"path/filepath"
	"testing"

	"vidpress/internal/auth"
	"vidpress/internal/database"
)

func openTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(context.Background(), filepath.Join(t.TempDir(), "vidpress.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSanitizeCommand(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"status", "status"},
		{"set-token", "set-token"},
		{"rm -rf /", "rm__rf__"},
		{"a\nb", "a_b"},
	}
	for _, tt := range tests {
		if got := sanitizeCommand(tt.in); got != tt.want {
			t.Errorf("sanitizeCommand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClearTokenWhenUnset(t *testing.T) {
	db := openTestDB(t)

	if !clearToken(context.Background(), db) {
		t.Error("clearing an unset token should succeed")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := auth.SetToken(ctx, db, "swordfish-42"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	hash, err := db.GetAdminTokenHash(ctx)
	if err != nil {
		t.Fatalf("GetAdminTokenHash() error: %v", err)
	}
	if hash == "" {
		t.Fatal("expected a stored hash")
	}

	if !clearToken(ctx, db) {
		t.Fatal("clearToken() failed")
	}
	hash, err = db.GetAdminTokenHash(ctx)
	if err != nil {
		t.Fatalf("GetAdminTokenHash() error: %v", err)
	}
	if hash != "" {
		t.Error("expected token to be cleared")
	}
}
