package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_DURATION", "250ms")

	if got := getEnv("TEST_STRING", "default"); got != "value" {
		t.Errorf("getEnv = %q, want value", got)
	}
	if got := getEnv("TEST_MISSING", "default"); got != "default" {
		t.Errorf("getEnv default = %q", got)
	}
	if !getEnvBool("TEST_BOOL", false) {
		t.Error("getEnvBool should return true")
	}
	if got := getEnvInt("TEST_INT", 0); got != 42 {
		t.Errorf("getEnvInt = %d, want 42", got)
	}
	if got := getEnvFloat("TEST_FLOAT", 0); got != 0.25 {
		t.Errorf("getEnvFloat = %g, want 0.25", got)
	}
	if got := getEnvDuration("TEST_DURATION", 0); got != 250*time.Millisecond {
		t.Errorf("getEnvDuration = %s, want 250ms", got)
	}
}

func TestGetEnvHelpersRejectGarbage(t *testing.T) {
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_INT", "lots")
	t.Setenv("TEST_DURATION", "soon")

	if getEnvBool("TEST_BOOL", false) {
		t.Error("invalid bool should fall back to default")
	}
	if got := getEnvInt("TEST_INT", 7); got != 7 {
		t.Errorf("invalid int should fall back, got %d", got)
	}
	if got := getEnvDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("invalid duration should fall back, got %s", got)
	}
}

func TestEnsureDirectory(t *testing.T) {
	dir := t.TempDir()

	created := filepath.Join(dir, "sub")
	if err := ensureDirectory(created, "test"); err != nil {
		t.Fatalf("ensureDirectory() error: %v", err)
	}
	if info, err := os.Stat(created); err != nil || !info.IsDir() {
		t.Fatal("directory was not created")
	}

	// Existing directory is fine.
	if err := ensureDirectory(created, "test"); err != nil {
		t.Errorf("ensureDirectory() on existing dir: %v", err)
	}

	// A file in the way is an error.
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ensureDirectory(file, "test"); err == nil {
		t.Error("expected error for non-directory path")
	}
}

func TestSetupOptionalDir(t *testing.T) {
	dir := t.TempDir()

	if !setupOptionalDir(filepath.Join(dir, "ok"), "test") {
		t.Error("writable directory should enable the feature")
	}

	// A path under a file cannot be created.
	file := filepath.Join(dir, "blocker")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if setupOptionalDir(filepath.Join(file, "nested"), "test") {
		t.Error("uncreatable directory should disable the feature")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.Port != "8080" {
		t.Errorf("Port = %q, want 8080", config.Port)
	}
	if config.MaxJobs < 1 {
		t.Errorf("MaxJobs = %d, want >= 1", config.MaxJobs)
	}
	if !config.TranscodingEnabled {
		t.Error("transcoding should be enabled with a writable cache dir")
	}
	if !config.ThumbnailsEnabled {
		t.Error("thumbnails should be enabled with a writable cache dir")
	}
	if config.DatabasePath != filepath.Join(config.DatabaseDir, "vidpress.db") {
		t.Errorf("unexpected DatabasePath: %s", config.DatabasePath)
	}
	if config.ResultsDir != filepath.Join(config.CacheDir, "results") {
		t.Errorf("unexpected ResultsDir: %s", config.ResultsDir)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CACHE_DIR", filepath.Join(dir, "cache"))
	t.Setenv("DATABASE_DIR", filepath.Join(dir, "db"))
	t.Setenv("PORT", "9999")
	t.Setenv("MAX_JOBS", "3")
	t.Setenv("PROGRESS_MIN_DELTA", "0.05")
	t.Setenv("PROGRESS_MIN_INTERVAL", "500ms")
	t.Setenv("CACHE_DISABLED", "true")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.Port != "9999" {
		t.Errorf("Port = %q", config.Port)
	}
	if config.MaxJobs != 3 {
		t.Errorf("MaxJobs = %d", config.MaxJobs)
	}
	if config.ProgressDelta != 0.05 {
		t.Errorf("ProgressDelta = %g", config.ProgressDelta)
	}
	if config.ProgressEvery != 500*time.Millisecond {
		t.Errorf("ProgressEvery = %s", config.ProgressEvery)
	}
	if !config.CacheDisabled {
		t.Error("CacheDisabled should be true")
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version should never be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should never be empty")
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/jobs", "api/jobs"},
		{"/api/jobs/{id}/events", "api/jobs"},
		{"/api/batches/{id}", "api/batches"},
		{"/health", "health"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/api/jobs", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodPost)
	router.HandleFunc("/api/jobs/{id}", func(http.ResponseWriter, *http.Request) {}).Methods(http.MethodGet, http.MethodDelete)

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes() error: %v", err)
	}
	if len(routes) != 3 {
		t.Fatalf("expected 3 method/path pairs, got %d", len(routes))
	}
}
