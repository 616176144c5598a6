package testutil

import (
	"testing"

	"golang.org/x/crypto/bcrypt"

	"slimlog/internal/credential"
	"slimlog/internal/encryption"
	"slimlog/internal/images"
	"slimlog/internal/slim"
)

// NewTestImageStore creates a new in-memory image store for testing.
func NewTestImageStore() *images.MemoryStore {
	return images.NewMemoryStore()
}

// NewTestHasher returns a bcrypt hasher at the minimum cost so tests stay fast.
func NewTestHasher(t *testing.T) slim.PasswordHasher {
	t.Helper()
	h, err := credential.NewBcryptHasher(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to create hasher: %v", err)
	}
	return h
}

// NewTestSealer creates a new deterministic export sealer for testing.
func NewTestSealer() slim.Sealer {
	return encryption.NewTestSealer()
}
