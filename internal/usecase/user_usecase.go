package usecase

import (
	"context"

	"authsvc/internal/domain/entity"
)

// UpdateUserInput carries the fields to change. Nil fields are left untouched.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

// UserOutput is the public view of a user.
type UserOutput struct {
	ID       uint
	Username string
	Email    string
	FullName string
}

// ToUserOutput converts a domain user into its public view.
func ToUserOutput(user *entity.User) *UserOutput {
	if user == nil {
		return nil
	}

	return &UserOutput{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName(),
	}
}

// UserUsecase defines the user management operations.
type UserUsecase interface {
	ListUsers(ctx context.Context) ([]*UserOutput, error)
	GetUser(ctx context.Context, id uint) (*UserOutput, error)
	UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*UserOutput, error)
	DeleteUser(ctx context.Context, id uint) (bool, error)
}
