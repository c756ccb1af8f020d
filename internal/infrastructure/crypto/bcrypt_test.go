package crypto

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/authsec/account-system/internal/core/domain"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if hash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := h.Verify(hash, "secret1"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if err := h.Verify(hash, "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := h.Verify("not-a-hash", "secret1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for malformed hash, got %v", err)
	}
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
	if h := NewBcryptHasher(bcrypt.MaxCost + 1); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
