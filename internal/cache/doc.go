// Package cache implements the content-keyed result cache that lets
// identical transcode requests short-circuit re-encoding.
//
// Keys are deterministic digests of (sourcePath, quality, format). The
// index is held in memory and mirrored to SQLite so hits survive restarts,
// but the disk remains the source of truth: an entry is only trusted when
// its output file exists and is non-empty at lookup time, and stale entries
// are evicted as a side effect of the lookup that discovers them.
//
// Requests carrying an explicit output path never touch the cache.
package cache
