// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"time"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user.
type RegisterInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Username string
	Password string
}

// --- Output DTOs ---

// AuthOutput returns the signed token issued for the authenticated user.
type AuthOutput struct {
	Token     string
	ExpiresIn time.Duration
	User      *UserOutput
}

// AuthUsecase defines the registration and login flows.
type AuthUsecase interface {
	// Register creates a new identity and issues its first token.
	// A username that already exists (ignoring case) fails with ErrUserAlreadyExists.
	Register(ctx context.Context, input *RegisterInput) (*AuthOutput, error)

	// Authenticate reports ok=false for an unknown user or a wrong password.
	// The error is set only when the user store fails.
	Authenticate(ctx context.Context, input *LoginInput) (*AuthOutput, bool, error)
}
