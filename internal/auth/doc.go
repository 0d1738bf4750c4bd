// Package auth gates mutating API endpoints behind an optional admin
// bearer token. The token's bcrypt hash lives in SQLite; when none is set,
// the API is open. cmd/tokenctl manages the stored token.
package auth
