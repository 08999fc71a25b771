package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"

	"authsvc/internal/domain/service"
)

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
// It still accepts the unsalted SHA-256 digests written before the scheme was switched.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt hasher with the default cost.
func NewBcryptHasher() service.PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

// NewBcryptHasherWithCost returns a bcrypt hasher with a custom cost.
// Out of range costs fall back to bcrypt.DefaultCost.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &bcryptHasher{cost: cost}
}

// Hash generates a salted hash from a plaintext password using bcrypt.
func (h *bcryptHasher) Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)

	return string(bytes), err
}

// Check compares a plaintext password with a bcrypt hash or a legacy SHA-256 digest.
func (h *bcryptHasher) Check(password, hash string) bool {
	if isLegacyDigest(hash) {
		return subtle.ConstantTimeCompare([]byte(digest(password)), []byte(hash)) == 1
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// NeedsRehash reports whether hash is a legacy digest or was produced with a different cost.
func (h *bcryptHasher) NeedsRehash(hash string) bool {
	if isLegacyDigest(hash) {
		return true
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}

	return cost != h.cost
}

// isLegacyDigest matches the 64 character lowercase hex form sha256Hasher writes.
// A bcrypt hash always starts with '$', so the two never overlap.
func isLegacyDigest(hash string) bool {
	if len(hash) != 64 {
		return false
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}
