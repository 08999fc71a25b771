// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

// PasswordHasher defines the interface for password hashing and verification.
// This abstracts the underlying hashing algorithm, keeping the domain pure.
type PasswordHasher interface {
	// Hash derives the storable digest of a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a digest to see if they match.
	Check(password, hash string) bool
}

// RehashChecker is implemented by hashers that can tell when a stored digest
// should be replaced with a fresh one on the next successful login.
type RehashChecker interface {
	NeedsRehash(hash string) bool
}
