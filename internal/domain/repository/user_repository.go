// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"authsvc/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// Create must reject a duplicate username atomically with domainerrors.ErrUserAlreadyExists.
type UserRepository interface {
	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// FindByUsername retrieves a single user by username, ignoring case.
	FindByUsername(ctx context.Context, username string) (*entity.User, error)

	// Create persists a new user and fills in the generated ID.
	Create(ctx context.Context, user *entity.User) error

	// Update writes only the fields set in update, returning ErrUserNotFound for an unknown id.
	Update(ctx context.Context, id uint, update *entity.UserUpdate) error

	// List returns every stored user ordered by ID.
	List(ctx context.Context) ([]*entity.User, error)

	// Delete removes a user, reporting false when no such user existed.
	Delete(ctx context.Context, id uint) (bool, error)
}
