package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is deliberately expensive to brute-force. Fixed rather than
// configurable so every stored hash carries the same work factor.
const bcryptCost = 10

// BcryptHasher hashes and verifies passwords with bcrypt. Hashing embeds a
// fresh random salt on every call, so two hashes of the same plaintext
// differ; verification recomputes with the embedded salt and compares in
// constant time.
type BcryptHasher struct{}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{}
}

// Hash returns the bcrypt hash of plaintext. The context is accepted to
// satisfy the hasher port; bcrypt itself is not cancellable.
func (h *BcryptHasher) Hash(_ context.Context, plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. A mismatch is (false, nil);
// a malformed or truncated hash is (false, error).
func (h *BcryptHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("verify password: %w", err)
}
