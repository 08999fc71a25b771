package context

import (
	"authsvc/internal/domain/service"

	"github.com/labstack/echo/v4"
)

const (
	// KeyClaims is the key for the verified token claims of the caller.
	KeyClaims ContextKey = "claims"

	// KeyUserID is the key for the authenticated user's ID.
	KeyUserID ContextKey = "userID"
)

// SetClaims stores the verified claims of the caller in echo.Context.
func SetClaims(c echo.Context, claims *service.Claims) {
	c.Set(string(KeyClaims), claims)
	c.Set(string(KeyUserID), claims.UserID)
}

// GetClaims returns the caller's claims set by the auth middleware.
func GetClaims(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(string(KeyClaims)).(*service.Claims)

	return claims, ok && claims != nil
}

// GetUserID returns the authenticated user's ID.
func GetUserID(c echo.Context) (uint, bool) {
	id, ok := c.Get(string(KeyUserID)).(uint)

	return id, ok
}
