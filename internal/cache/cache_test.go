package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vidpress/internal/database"
	"vidpress/internal/preset"
)

func testCache(t *testing.T) (*Cache, *database.Database) {
	t.Helper()
	dir := t.TempDir()

	db, err := database.New(context.Background(), filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	c, err := New(context.Background(), filepath.Join(dir, "results"), db)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, db
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s) error: %v", path, err)
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key("/media/in.mp4", preset.QualityHigh, preset.FormatMP4)
	b := Key("/media/in.mp4", preset.QualityHigh, preset.FormatMP4)
	if a != b {
		t.Errorf("Key not deterministic: %s != %s", a, b)
	}
	if len(a) != 32 {
		t.Errorf("Key length = %d, want 32 hex chars", len(a))
	}

	if Key("/media/in.mp4", preset.QualityLow, preset.FormatMP4) == a {
		t.Error("different quality produced the same key")
	}
	if Key("/media/in.mp4", preset.QualityHigh, preset.FormatWebM) == a {
		t.Error("different format produced the same key")
	}
	if Key("/media/other.mp4", preset.QualityHigh, preset.FormatMP4) == a {
		t.Error("different source produced the same key")
	}
}

func TestLookupHitAndMiss(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	key := Key("/in.mp4", preset.QualityMedium, preset.FormatMP4)
	out := c.OutputPath(key, preset.FormatMP4)
	writeFile(t, out, "encoded bytes")

	if _, ok := c.Lookup(ctx, key); ok {
		t.Fatal("Lookup hit before Insert")
	}

	err := c.Insert(ctx, database.CacheEntry{
		Key: key, SourcePath: "/in.mp4", Quality: "medium", Format: "mp4", OutputPath: out,
	})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, ok := c.Lookup(ctx, key)
	if !ok || got != out {
		t.Errorf("Lookup() = (%q, %v), want (%q, true)", got, ok, out)
	}
}

func TestLookupEvictsMissingFile(t *testing.T) {
	c, db := testCache(t)
	ctx := context.Background()

	key := Key("/in.mp4", preset.QualityHigh, preset.FormatWebM)
	out := c.OutputPath(key, preset.FormatWebM)
	writeFile(t, out, "x")
	_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: "/in.mp4", Quality: "high", Format: "webm", OutputPath: out})

	if err := os.Remove(out); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	if _, ok := c.Lookup(ctx, key); ok {
		t.Error("Lookup hit for missing file")
	}

	// The eviction must reach the persisted index too.
	row, err := db.GetCacheEntry(ctx, key)
	if err != nil {
		t.Fatalf("GetCacheEntry() error: %v", err)
	}
	if row != nil {
		t.Error("stale entry still present in index after eviction")
	}
}

func TestLookupEvictsEmptyFile(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	key := Key("/in.mp4", preset.QualityLow, preset.FormatMP4)
	out := c.OutputPath(key, preset.FormatMP4)
	writeFile(t, out, "")
	_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: "/in.mp4", Quality: "low", Format: "mp4", OutputPath: out})

	if _, ok := c.Lookup(ctx, key); ok {
		t.Error("Lookup hit for zero-byte file")
	}
}

func TestRemove(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	key := Key("/in.mov", preset.QualityMedium, preset.FormatMOV)
	out := c.OutputPath(key, preset.FormatMOV)
	writeFile(t, out, "data")
	_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: "/in.mov", Quality: "medium", Format: "mov", OutputPath: out})

	if !c.Remove(ctx, key) {
		t.Error("Remove() = false for present entry")
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file still exists after Remove: %v", err)
	}
	if c.Remove(ctx, key) {
		t.Error("Remove() = true for absent entry")
	}
}

func TestClearReportsActualCount(t *testing.T) {
	c, db := testCache(t)
	ctx := context.Background()

	for _, src := range []string{"/a.mp4", "/b.mp4", "/c.mp4"} {
		key := Key(src, preset.QualityMedium, preset.FormatMP4)
		out := c.OutputPath(key, preset.FormatMP4)
		writeFile(t, out, "data")
		_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: src, Quality: "medium", Format: "mp4", OutputPath: out})
	}

	// One output already gone: clear should count only files it deleted.
	gone := Key("/a.mp4", preset.QualityMedium, preset.FormatMP4)
	if err := os.Remove(c.OutputPath(gone, preset.FormatMP4)); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	if got := c.Clear(ctx); got != 2 {
		t.Errorf("Clear() = %d, want 2", got)
	}
	if paths := c.List(ctx); len(paths) != 0 {
		t.Errorf("List() after clear = %v, want empty", paths)
	}
	rows, _ := db.ListCacheEntries(ctx)
	if len(rows) != 0 {
		t.Errorf("index rows after clear = %d, want 0", len(rows))
	}
}

func TestIndexSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	db, err := database.New(context.Background(), filepath.Join(dir, "index.db"))
	if err != nil {
		t.Fatalf("database.New() error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	ctx := context.Background()

	resultsDir := filepath.Join(dir, "results")
	c, err := New(ctx, resultsDir, db)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	key := Key("/in.mp4", preset.QualityHigh, preset.FormatMP4)
	out := c.OutputPath(key, preset.FormatMP4)
	writeFile(t, out, "encoded")
	_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: "/in.mp4", Quality: "high", Format: "mp4", OutputPath: out})

	reloaded, err := New(ctx, resultsDir, db)
	if err != nil {
		t.Fatalf("New() reload error: %v", err)
	}
	got, ok := reloaded.Lookup(ctx, key)
	if !ok || got != out {
		t.Errorf("Lookup() after reload = (%q, %v), want (%q, true)", got, ok, out)
	}
}

func TestStats(t *testing.T) {
	c, _ := testCache(t)
	ctx := context.Background()

	key := Key("/in.mp4", preset.QualityMedium, preset.FormatMP4)
	out := c.OutputPath(key, preset.FormatMP4)
	writeFile(t, out, "12345")
	_ = c.Insert(ctx, database.CacheEntry{Key: key, SourcePath: "/in.mp4", Quality: "medium", Format: "mp4", OutputPath: out})

	entries, bytes := c.Stats()
	if entries != 1 {
		t.Errorf("Stats() entries = %d, want 1", entries)
	}
	if bytes != 5 {
		t.Errorf("Stats() bytes = %d, want 5", bytes)
	}
}
