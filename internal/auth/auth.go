package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"vidpress/internal/database"
	"vidpress/internal/logging"
	"vidpress/internal/metrics"
)

// ErrNoToken indicates no admin token is configured; auth is disabled.
var ErrNoToken = errors.New("no admin token configured")

// TokenStore reads and writes the stored admin token hash.
type TokenStore interface {
	GetAdminTokenHash(ctx context.Context) (string, error)
	SetAdminTokenHash(ctx context.Context, hash string) error
	ClearAdminToken(ctx context.Context) error
}

// Verifier checks bearer tokens against the stored bcrypt hash. When no
// token is set, every request passes; setting one via tokenctl locks the
// mutating endpoints down.
type Verifier struct {
	store TokenStore
}

// NewVerifier creates a verifier backed by the database token store.
func NewVerifier(store TokenStore) *Verifier {
	return &Verifier{store: store}
}

// Required reports whether a token is configured.
func (v *Verifier) Required(ctx context.Context) bool {
	hash, err := v.store.GetAdminTokenHash(ctx)
	if err != nil {
		logging.Warn("failed to read admin token hash: %v", err)
		return false
	}
	return hash != ""
}

// Verify checks a presented token. ErrNoToken means auth is not enabled.
func (v *Verifier) Verify(ctx context.Context, token string) error {
	hash, err := v.store.GetAdminTokenHash(ctx)
	if err != nil {
		return err
	}
	if hash == "" {
		return ErrNoToken
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}

// SetToken hashes and stores a new admin token.
func SetToken(ctx context.Context, store TokenStore, token string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return store.SetAdminTokenHash(ctx, string(hash))
}

// Authorize checks the request's bearer token. It returns true when the
// request may proceed: either auth is disabled or the token matches.
func (v *Verifier) Authorize(r *http.Request) bool {
	ctx := r.Context()
	if !v.Required(ctx) {
		return true
	}

	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("missing").Inc()
		return false
	}

	if err := v.Verify(ctx, token); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("denied").Inc()
		logging.Debug("admin token rejected from %s", r.RemoteAddr)
		return false
	}
	metrics.AuthAttemptsTotal.WithLabelValues("granted").Inc()
	return true
}

var _ TokenStore = (*database.Database)(nil)
