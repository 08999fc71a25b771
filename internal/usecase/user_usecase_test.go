package usecase

import (
	"testing"

	"authsvc/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestToUserOutput(t *testing.T) {
	user := &entity.User{
		ID:           7,
		Username:     "alice",
		Email:        "alice@example.com",
		FirstName:    "Alice",
		LastName:     "Liddell",
		PasswordHash: "digest",
	}

	out := ToUserOutput(user)
	assert.Equal(t, &UserOutput{ID: 7, Username: "alice", Email: "alice@example.com", FullName: "Alice Liddell"}, out)
	assert.Nil(t, ToUserOutput(nil))
}
