package cache

import (
	"context"
	"crypto/md5" //nolint:gosec // MD5 used for cache key generation, not security
	"fmt"
	"path/filepath"
	"sync"

	"vidpress/internal/database"
	"vidpress/internal/filesystem"
	"vidpress/internal/logging"
	"vidpress/internal/metrics"
	"vidpress/internal/preset"
)

// Key derives the deterministic cache key for a request. Quality and format
// are part of the digest so the same source at different tiers gets
// distinct entries.
func Key(sourcePath string, quality preset.Quality, format preset.Format) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%s", sourcePath, quality, format))) //nolint:gosec
	return fmt.Sprintf("%x", sum)
}

// Cache is the result cache. All methods are safe for concurrent use; the
// in-memory map and its SQLite mirror are mutated under one lock so
// lookup-and-evict sequences are atomic.
type Cache struct {
	dir string
	db  *database.Database

	mu      sync.Mutex
	entries map[string]database.CacheEntry
}

// New creates a cache backed by dir, loading the persisted index from db.
// Entries pointing at files that vanished while the service was down are
// not pruned eagerly; they evict lazily at lookup.
func New(ctx context.Context, dir string, db *database.Database) (*Cache, error) {
	if err := filesystem.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &Cache{
		dir:     dir,
		db:      db,
		entries: make(map[string]database.CacheEntry),
	}

	persisted, err := db.ListCacheEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cache index: %w", err)
	}
	for _, e := range persisted {
		c.entries[e.Key] = e
	}

	logging.Info("Result cache loaded: %d entries in %s", len(c.entries), dir)
	return c, nil
}

// Dir returns the backing directory.
func (c *Cache) Dir() string {
	return c.dir
}

// OutputPath returns the canonical output location for a key and format.
func (c *Cache) OutputPath(key string, format preset.Format) string {
	return filepath.Join(c.dir, key+"."+format.Extension())
}

// Lookup returns the cached output path for key if the file is still
// present and non-empty. Stale entries are evicted as a side effect.
func (c *Cache) Lookup(ctx context.Context, key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		metrics.CacheMisses.Inc()
		return "", false
	}

	if !filesystem.Exists(entry.OutputPath) {
		logging.Debug("Evicting stale cache entry %s (%s gone or empty)", key, entry.OutputPath)
		delete(c.entries, key)
		if _, err := c.db.DeleteCacheEntry(ctx, key); err != nil {
			logging.Warn("failed to delete stale cache index row %s: %v", key, err)
		}
		metrics.CacheEvictions.Inc()
		metrics.CacheMisses.Inc()
		return "", false
	}

	metrics.CacheHits.Inc()
	return entry.OutputPath, true
}

// Insert records a successful transcode result.
func (c *Cache) Insert(ctx context.Context, entry database.CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.UpsertCacheEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to persist cache entry: %w", err)
	}
	c.entries[entry.Key] = entry
	return nil
}

// Remove drops one entry and deletes its output file. Returns true when
// the entry existed, even if the file deletion failed (the index row is
// gone either way).
func (c *Cache) Remove(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}

	delete(c.entries, key)
	if _, err := c.db.DeleteCacheEntry(ctx, key); err != nil {
		logging.Warn("failed to delete cache index row %s: %v", key, err)
	}
	if err := filesystem.RemoveWithRetry(entry.OutputPath, filesystem.DefaultRetryConfig()); err != nil {
		logging.Warn("failed to remove cached file %s: %v", entry.OutputPath, err)
	}
	return true
}

// Clear physically deletes every file in the backing directory and returns
// the count actually removed. Per-file I/O errors are logged and skipped so
// one locked file cannot block cleanup of the rest; the in-memory index and
// its SQLite mirror are dropped unconditionally.
func (c *Cache) Clear(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	entries, err := filesystem.ReadDirWithRetry(c.dir, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Warn("failed to read cache directory %s: %v", c.dir, err)
	} else {
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			path := filepath.Join(c.dir, e.Name())
			if err := filesystem.RemoveWithRetry(path, filesystem.DefaultRetryConfig()); err != nil {
				logging.Warn("failed to remove cached file %s: %v", path, err)
				continue
			}
			removed++
		}
	}

	c.entries = make(map[string]database.CacheEntry)
	if _, err := c.db.ClearCacheEntries(ctx); err != nil {
		logging.Warn("failed to clear cache index: %v", err)
	}

	logging.Info("Result cache cleared: %d files removed", removed)
	return removed
}

// List returns the output paths of all currently valid entries. Entries
// whose file is missing are skipped (and left for lookup-time eviction).
func (c *Cache) List(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.entries))
	for _, entry := range c.entries {
		if !filesystem.Exists(entry.OutputPath) {
			continue
		}
		paths = append(paths, entry.OutputPath)
	}
	return paths
}

// Entries returns a snapshot of the index (for the HTTP listing endpoint).
func (c *Cache) Entries() []database.CacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]database.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	return out
}

// Stats reports entry count and total on-disk bytes for metrics.
func (c *Cache) Stats() (int, int64) {
	c.mu.Lock()
	entries := make([]database.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	var bytes int64
	for _, e := range entries {
		size, err := filesystem.Size(e.OutputPath)
		if err != nil {
			continue
		}
		bytes += size
	}
	return len(entries), bytes
}
