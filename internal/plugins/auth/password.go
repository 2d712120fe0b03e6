package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultBcryptCost is the bcrypt work factor for stored passwords.
const DefaultBcryptCost = 10

// PasswordHasher produces and checks one-way salted password digests.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) bool
}

// bcryptHasher implements PasswordHasher with bcrypt. bcrypt is CPU-bound by
// design, so a weighted semaphore caps how many digests run concurrently;
// requests beyond the cap wait (or give up when their context ends) instead
// of starving every other request goroutine of CPU.
type bcryptHasher struct {
	cost int
	sem  *semaphore.Weighted
}

// NewBcryptHasher creates a hasher with the given cost allowing at most
// maxConcurrent simultaneous hash or verify operations.
func NewBcryptHasher(cost, maxConcurrent int) PasswordHasher {
	return &bcryptHasher{
		cost: cost,
		sem:  semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Hash returns a bcrypt digest with a fresh random salt. Errors abort the
// caller's save.
func (h *bcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("waiting for hash slot: %w", err)
	}
	defer h.sem.Release(1)

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches hash. bcrypt compares in constant
// time. A malformed hash or a cancelled context is a mismatch, never a match.
func (h *bcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
