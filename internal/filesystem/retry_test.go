package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVolumeResolver(t *testing.T) {
	vr := NewVolumeResolver(map[string]string{
		"cache":    "/cache",
		"database": "/database",
		"nested":   "/cache/deep",
	})

	tests := []struct {
		path string
		want string
	}{
		{"/cache/out.mp4", "cache"},
		{"/cache/deep/file", "nested"},
		{"/database/vidpress.db", "database"},
		{"/elsewhere/file", "unknown"},
		{"/cache", "cache"},
	}

	for _, tt := range tests {
		if got := vr.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestVolumeResolverNil(t *testing.T) {
	var vr *VolumeResolver
	if got := vr.Resolve("/anything"); got != "unknown" {
		t.Errorf("nil resolver Resolve() = %q, want unknown", got)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()

	missing := filepath.Join(tmpDir, "missing.mp4")
	if Exists(missing) {
		t.Error("Exists() = true for missing file")
	}

	empty := filepath.Join(tmpDir, "empty.mp4")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatalf("failed to create empty file: %v", err)
	}
	if Exists(empty) {
		t.Error("Exists() = true for zero-byte file")
	}

	real := filepath.Join(tmpDir, "real.mp4")
	if err := os.WriteFile(real, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if !Exists(real) {
		t.Error("Exists() = false for non-empty file")
	}

	if Exists(tmpDir) {
		t.Error("Exists() = true for a directory")
	}
}

func TestSize(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "f")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	size, err := Size(path)
	if err != nil {
		t.Fatalf("Size() error: %v", err)
	}
	if size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	if _, err := Size(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("Size() on missing file did not error")
	}
}

func TestRemoveWithRetryNonStaleFailsFast(t *testing.T) {
	// A plain missing-file error is not ESTALE and must not be retried.
	err := RemoveWithRetry(filepath.Join(t.TempDir(), "missing"), DefaultRetryConfig())
	if err == nil {
		t.Error("RemoveWithRetry on missing file did not error")
	}
}

func TestIsNFSStaleError(t *testing.T) {
	if isNFSStaleError(nil) {
		t.Error("isNFSStaleError(nil) = true")
	}
	if isNFSStaleError(os.ErrNotExist) {
		t.Error("isNFSStaleError(ErrNotExist) = true")
	}
}
