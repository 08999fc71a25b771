package auth

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lowerHex64 = regexp.MustCompile(`^[0-9a-f]{64}$`)

func TestSHA256Hasher_KnownVectors(t *testing.T) {
	hasher := NewSHA256Hasher()

	tests := []struct {
		password string
		want     string
	}{
		{password: "", want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{password: "password", want: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8"},
		{password: "abc", want: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.password), func(t *testing.T) {
			got, err := hasher.Hash(tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSHA256Hasher_DeterministicLowercaseHex(t *testing.T) {
	hasher := NewSHA256Hasher()

	for _, password := range []string{"pw1", "pässwörd", "密碼", "with spaces and 123!"} {
		first, err := hasher.Hash(password)
		require.NoError(t, err)
		second, err := hasher.Hash(password)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Regexp(t, lowerHex64, first)
	}
}

func TestSHA256Hasher_DistinctPasswordsDistinctDigests(t *testing.T) {
	hasher := NewSHA256Hasher()

	seen := make(map[string]string)
	for i := range 500 {
		password := fmt.Sprintf("password-%d", i)
		hash, err := hasher.Hash(password)
		require.NoError(t, err)

		if other, ok := seen[hash]; ok {
			t.Fatalf("digest collision between %q and %q", other, password)
		}
		seen[hash] = password
	}
}

func TestSHA256Hasher_Check(t *testing.T) {
	hasher := NewSHA256Hasher()

	hash, err := hasher.Hash("pw1")
	require.NoError(t, err)

	assert.True(t, hasher.Check("pw1", hash))
	assert.False(t, hasher.Check("pw2", hash))
	assert.False(t, hasher.Check("PW1", hash))
	assert.False(t, hasher.Check("", hash))
	// Comparison is on the lowercase encoding.
	assert.False(t, hasher.Check("password", "5E884898DA28047151D0E56F8DC6292773603D0D6AABBDD62A11EF721D1542D8"))
}
