package entity

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "John Doe", (&User{FirstName: "John", LastName: "Doe"}).FullName())
	assert.Equal(t, "John", (&User{FirstName: "John"}).FullName())
	assert.Equal(t, "Doe", (&User{LastName: "Doe"}).FullName())
	assert.Empty(t, (&User{}).FullName())
}

func TestNormalizeUsername(t *testing.T) {
	assert.Equal(t, "alice", NormalizeUsername("Alice"))
	assert.Equal(t, "alice_01", NormalizeUsername("ALICE_01"))
}

func TestNormalizeUsername_KeepsRuneCount(t *testing.T) {
	// normalized_username shares the varchar(50) limit of username.
	for _, username := range []string{strings.Repeat("İ", 50), strings.Repeat("Ⱥ", 50), strings.Repeat("ẞ", 50)} {
		normalized := NormalizeUsername(username)
		assert.Equal(t, utf8.RuneCountInString(username), utf8.RuneCountInString(normalized), username)
	}
	assert.Equal(t, "i", NormalizeUsername("İ"))
}

func TestUserUpdate_Apply(t *testing.T) {
	updatedAt := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	email := "new@example.com"
	user := &User{ID: 1, Email: "old@example.com", FirstName: "Ann", LastName: "Lee", PasswordHash: "digest"}

	(&UserUpdate{Email: &email, UpdatedAt: updatedAt}).Apply(user)

	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, "Ann", user.FirstName)
	assert.Equal(t, "Lee", user.LastName)
	assert.Equal(t, "digest", user.PasswordHash)
	require.NotNil(t, user.UpdatedAt)
	assert.True(t, updatedAt.Equal(*user.UpdatedAt))
}
