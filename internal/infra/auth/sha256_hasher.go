// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	"authsvc/internal/domain/service"
)

// sha256Hasher stores passwords as the lowercase hex SHA-256 of their UTF-8 bytes.
// It is unsalted and fast, kept for compatibility with digests already in the store.
type sha256Hasher struct{}

// NewSHA256Hasher is the constructor for sha256Hasher.
func NewSHA256Hasher() service.PasswordHasher {
	return &sha256Hasher{}
}

// Hash returns the 64 character lowercase hex digest. It never fails.
func (h *sha256Hasher) Hash(password string) (string, error) {
	return digest(password), nil
}

// Check reports whether password hashes to the given hex digest.
func (h *sha256Hasher) Check(password, hash string) bool {
	return subtle.ConstantTimeCompare([]byte(digest(password)), []byte(hash)) == 1
}

func digest(password string) string {
	sum := sha256.Sum256([]byte(password))

	return hex.EncodeToString(sum[:])
}
