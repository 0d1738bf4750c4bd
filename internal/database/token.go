package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SetAdminTokenHash stores the bcrypt hash of the admin token, replacing
// any previous one.
func (d *Database) SetAdminTokenHash(ctx context.Context, hash string) error {
	start := time.Now()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO admin_token (id, hash, updated_at)
		VALUES (1, ?, strftime('%s', 'now'))
		ON CONFLICT(id) DO UPDATE SET
			hash = excluded.hash,
			updated_at = excluded.updated_at`, hash)
	observeQuery("set_token_hash", start, err)
	return err
}

// GetAdminTokenHash returns the stored hash, or "" when no token is set.
func (d *Database) GetAdminTokenHash(ctx context.Context) (string, error) {
	start := time.Now()
	row := d.db.QueryRowContext(ctx, `SELECT hash FROM admin_token WHERE id = 1`)

	var hash string
	err := row.Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		observeQuery("get_token_hash", start, nil)
		return "", nil
	}
	observeQuery("get_token_hash", start, err)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// ClearAdminToken removes the stored token hash, disabling token auth.
func (d *Database) ClearAdminToken(ctx context.Context) error {
	start := time.Now()
	_, err := d.db.ExecContext(ctx, `DELETE FROM admin_token WHERE id = 1`)
	observeQuery("clear_token_hash", start, err)
	return err
}
