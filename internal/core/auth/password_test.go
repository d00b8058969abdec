package auth

import (
	"context"
	"strings"
	"testing"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	h := NewBcryptHasher()
	ctx := context.Background()

	hash, err := h.Hash(ctx, "secret1")
	if err != nil {
		t.Fatalf("Hash returned error: %v", err)
	}
	if hash == "secret1" || hash == "" {
		t.Fatalf("expected opaque hash, got %q", hash)
	}

	ok, err := h.Verify(ctx, "secret1", hash)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected matching password to verify")
	}

	ok, err = h.Verify(ctx, "wrong", hash)
	if err != nil {
		t.Fatalf("Verify returned error for mismatch: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestBcryptHasher_SaltedNonDeterministic(t *testing.T) {
	h := NewBcryptHasher()
	ctx := context.Background()

	first, err := h.Hash(ctx, "secret1")
	if err != nil {
		t.Fatalf("first Hash: %v", err)
	}
	second, err := h.Hash(ctx, "secret1")
	if err != nil {
		t.Fatalf("second Hash: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same plaintext")
	}

	for _, hash := range []string{first, second} {
		ok, err := h.Verify(ctx, "secret1", hash)
		if err != nil || !ok {
			t.Fatalf("hash %q did not verify: ok=%v err=%v", hash, ok, err)
		}
	}
}

func TestBcryptHasher_MalformedHash(t *testing.T) {
	h := NewBcryptHasher()

	ok, err := h.Verify(context.Background(), "secret1", "not-a-bcrypt-hash")
	if ok {
		t.Fatalf("expected malformed hash to fail verification")
	}
	if err == nil {
		t.Fatalf("expected error for malformed hash, got nil")
	}
	if !strings.Contains(err.Error(), "verify password") {
		t.Fatalf("unexpected error: %v", err)
	}
}
