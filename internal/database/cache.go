package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// CacheEntry is one row of the result cache index.
type CacheEntry struct {
	Key        string `json:"key"`
	SourcePath string `json:"sourcePath"`
	Quality    string `json:"quality"`
	Format     string `json:"format"`
	OutputPath string `json:"outputPath"`
	CreatedAt  int64  `json:"createdAt"`
}

// UpsertCacheEntry inserts or replaces a cache index row.
func (d *Database) UpsertCacheEntry(ctx context.Context, e CacheEntry) error {
	start := time.Now()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO cache_entries (key, source_path, quality, format, output_path, created_at)
		VALUES (?, ?, ?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			output_path = excluded.output_path,
			created_at = excluded.created_at`,
		e.Key, e.SourcePath, e.Quality, e.Format, e.OutputPath)
	observeQuery("upsert_cache_entry", start, err)
	return err
}

// GetCacheEntry returns the entry for key, or (nil, nil) on a miss.
func (d *Database) GetCacheEntry(ctx context.Context, key string) (*CacheEntry, error) {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, `
		SELECT key, source_path, quality, format, output_path, created_at
		FROM cache_entries WHERE key = ?`, key)

	var e CacheEntry
	err := row.Scan(&e.Key, &e.SourcePath, &e.Quality, &e.Format, &e.OutputPath, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		observeQuery("get_cache_entry", start, nil)
		return nil, nil
	}
	observeQuery("get_cache_entry", start, err)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteCacheEntry removes one index row. Returns true if a row existed.
func (d *Database) DeleteCacheEntry(ctx context.Context, key string) (bool, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
	observeQuery("delete_cache_entry", start, err)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListCacheEntries returns all index rows, newest first.
func (d *Database) ListCacheEntries(ctx context.Context) ([]CacheEntry, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, `
		SELECT key, source_path, quality, format, output_path, created_at
		FROM cache_entries ORDER BY created_at DESC`)
	observeQuery("list_cache_entries", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []CacheEntry
	for rows.Next() {
		var e CacheEntry
		if err := rows.Scan(&e.Key, &e.SourcePath, &e.Quality, &e.Format, &e.OutputPath, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ClearCacheEntries drops every index row, returning the count removed.
func (d *Database) ClearCacheEntries(ctx context.Context) (int, error) {
	start := time.Now()
	res, err := d.db.ExecContext(ctx, `DELETE FROM cache_entries`)
	observeQuery("clear_cache_entries", start, err)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
