// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"
)

// User is the identity a person authenticates as.
type User struct {
	ID           uint       // Stable numeric identifier assigned by the store.
	Username     string     // Unique login name, compared case-insensitively.
	Email        string     // Contact email.
	FirstName    string     // Optional profile field.
	LastName     string     // Optional profile field.
	PasswordHash string     // Credential digest, never the plaintext password.
	CreatedAt    time.Time  // UTC timestamp of registration.
	UpdatedAt    *time.Time // UTC timestamp of the last update, nil if never updated.
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// NormalizeUsername returns the form used for uniqueness and lookups.
func NormalizeUsername(username string) string {
	return strings.ToLower(username)
}

// UserUpdate lists the columns an update writes. Nil fields are left untouched in the store.
type UserUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	PasswordHash *string
	UpdatedAt    time.Time
}

// Apply copies the set fields onto u.
func (upd *UserUpdate) Apply(u *User) {
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.PasswordHash != nil {
		u.PasswordHash = *upd.PasswordHash
	}
	updatedAt := upd.UpdatedAt
	u.UpdatedAt = &updatedAt
}
