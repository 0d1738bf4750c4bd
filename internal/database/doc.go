// Package database manages SQLite persistence for the vidpress service.
//
// Three tables live here:
//   - cache_entries: the result cache index, keyed by the deterministic
//     request digest. The disk stays authoritative; entries are validated
//     against the filesystem at lookup time by the cache package.
//   - jobs: terminal job records for history and debugging.
//   - admin_token: the single bcrypt hash protecting mutating endpoints.
//
// The database runs in WAL mode with a busy timeout so concurrent job
// completions do not trip "database is locked" errors.
package database
