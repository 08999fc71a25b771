package service

import "time"

// Claims is the identity carried by a verified token.
type Claims struct {
	UserID    uint
	Username  string
	Issuer    string
	Audience  []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed identity tokens.
type TokenService interface {
	// Issue builds a signed token for the given subject.
	Issue(userID uint, username string) (string, error)

	// Validate verifies signature, issuer, audience and lifetime.
	// It returns false, and no claims, when any check fails.
	Validate(tokenString string) (*Claims, bool)

	// ExpiresIn returns the lifetime of newly issued tokens.
	ExpiresIn() time.Duration
}
