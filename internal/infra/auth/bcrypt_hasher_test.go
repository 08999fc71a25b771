package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	password := "StrongPass123!"
	hash, err := hasher.Hash(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)

	assert.True(t, hasher.Check(password, hash))
	assert.False(t, hasher.Check("WrongPassword123!", hash))
	assert.False(t, hasher.Check("", hash))
	assert.False(t, hasher.Check(password, "invalid_hash"))
}

func TestBcryptHasher_SaltsEachHash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)

	first, err := hasher.Hash("same-password")
	assert.NoError(t, err)
	second, err := hasher.Hash("same-password")
	assert.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_WithCustomCost(t *testing.T) {
	customCost := 6
	hasher := NewBcryptHasherWithCost(customCost)

	hash, err := hasher.Hash("StrongPass123!")
	assert.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	assert.NoError(t, err)
	assert.Equal(t, customCost, cost)
}

func TestBcryptHasher_InvalidCostFallsBackToDefault(t *testing.T) {
	hasher := NewBcryptHasherWithCost(100).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}

func TestBcryptHasher_ChecksLegacySHA256Digest(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost)
	legacy := digest("pw1")

	assert.True(t, hasher.Check("pw1", legacy))
	assert.False(t, hasher.Check("pw2", legacy))
	assert.False(t, hasher.Check("pw1", strings.ToUpper(legacy)))
}

func TestBcryptHasher_NeedsRehash(t *testing.T) {
	hasher := NewBcryptHasherWithCost(bcrypt.MinCost).(*bcryptHasher)

	current, err := hasher.Hash("pw1")
	assert.NoError(t, err)
	stronger, err := NewBcryptHasherWithCost(bcrypt.MinCost + 1).Hash("pw1")
	assert.NoError(t, err)

	tests := []struct {
		name string
		hash string
		want bool
	}{
		{name: "legacy digest", hash: digest("pw1"), want: true},
		{name: "current cost", hash: current, want: false},
		{name: "different cost", hash: stronger, want: true},
		{name: "garbage", hash: "not-a-hash", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasher.NeedsRehash(tt.hash))
		})
	}
}
