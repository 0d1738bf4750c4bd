package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
)

type memStore struct {
	hash string
}

func (m *memStore) GetAdminTokenHash(ctx context.Context) (string, error) { return m.hash, nil }
func (m *memStore) SetAdminTokenHash(ctx context.Context, hash string) error {
	m.hash = hash
	return nil
}
func (m *memStore) ClearAdminToken(ctx context.Context) error {
	m.hash = ""
	return nil
}

func TestVerifyWithoutToken(t *testing.T) {
	v := NewVerifier(&memStore{})

	if v.Required(context.Background()) {
		t.Error("Required() = true with no token set")
	}
	if err := v.Verify(context.Background(), "anything"); !errors.Is(err, ErrNoToken) {
		t.Errorf("Verify() err = %v, want ErrNoToken", err)
	}
}

func TestSetAndVerifyToken(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()

	if err := SetToken(ctx, store, "s3cret"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	v := NewVerifier(store)
	if !v.Required(ctx) {
		t.Error("Required() = false after SetToken")
	}
	if err := v.Verify(ctx, "s3cret"); err != nil {
		t.Errorf("Verify() with correct token error: %v", err)
	}
	if err := v.Verify(ctx, "wrong"); err == nil {
		t.Error("Verify() with wrong token succeeded")
	}
}

func TestAuthorize(t *testing.T) {
	store := &memStore{}
	ctx := context.Background()
	v := NewVerifier(store)

	// Open API when no token is configured.
	req := httptest.NewRequest("POST", "/api/jobs", nil)
	if !v.Authorize(req) {
		t.Error("Authorize() = false with auth disabled")
	}

	if err := SetToken(ctx, store, "s3cret"); err != nil {
		t.Fatalf("SetToken() error: %v", err)
	}

	req = httptest.NewRequest("POST", "/api/jobs", nil)
	if v.Authorize(req) {
		t.Error("Authorize() = true with missing header")
	}

	req.Header.Set("Authorization", "Bearer wrong")
	if v.Authorize(req) {
		t.Error("Authorize() = true with wrong token")
	}

	req.Header.Set("Authorization", "Bearer s3cret")
	if !v.Authorize(req) {
		t.Error("Authorize() = false with correct token")
	}
}
