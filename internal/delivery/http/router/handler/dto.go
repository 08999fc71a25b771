package handler

import (
	"time"

	"authsvc/internal/usecase"
)

// RegisterRequest represents the request body for registering a user
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"max=100"`
	LastName  string `json:"lastName" validate:"max=100"`
	Password  string `json:"password" validate:"required,min=1,max=128"`
}

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UpdateUserRequest represents the request body for updating a user. Omitted fields are unchanged.
type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Password  *string `json:"password" validate:"omitempty,max=128"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// AuthResponse carries a freshly issued token.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expiresIn"` // seconds
	User      *UserResponse `json:"user"`
}

// MeResponse describes the caller as seen through their token.
type MeResponse struct {
	UserID    uint      `json:"userId"`
	Username  string    `json:"username"`
	Issuer    string    `json:"issuer"`
	Audience  []string  `json:"audience"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func toUserResponse(out *usecase.UserOutput) *UserResponse {
	if out == nil {
		return nil
	}

	return &UserResponse{
		ID:       out.ID,
		Username: out.Username,
		Email:    out.Email,
		FullName: out.FullName,
	}
}

func toAuthResponse(out *usecase.AuthOutput) *AuthResponse {
	return &AuthResponse{
		Token:     out.Token,
		ExpiresIn: int64(out.ExpiresIn / time.Second),
		User:      toUserResponse(out.User),
	}
}
