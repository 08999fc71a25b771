package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	deliverycontext "authsvc/internal/delivery/context"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	"authsvc/internal/errors"
	"authsvc/internal/usecase"

	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	userRepo  repository.UserRepository
	hasher    service.PasswordHasher
	publisher service.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// UserServiceParams holds dependencies for UserService, injected by Fx.
type UserServiceParams struct {
	fx.In

	UserRepo  repository.UserRepository
	Hasher    service.PasswordHasher
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewUserService creates a new user management service
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return newUserService(params, time.Now)
}

func newUserService(params UserServiceParams, now func() time.Time) *userService {
	return &userService{
		userRepo:  params.UserRepo,
		hasher:    params.Hasher,
		publisher: params.Publisher,
		logger:    params.Logger,
		now:       now,
	}
}

func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// ListUsers returns every registered user.
func (srv *userService) ListUsers(ctx context.Context) ([]*usecase.UserOutput, error) {
	users, err := srv.userRepo.List(ctx)
	if err != nil {
		srv.log(ctx).Error("Failed to list users", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to list users")
	}

	outputs := make([]*usecase.UserOutput, 0, len(users))
	for _, user := range users {
		outputs = append(outputs, usecase.ToUserOutput(user))
	}

	return outputs, nil
}

// GetUser returns a single user or ErrUserNotFound.
func (srv *userService) GetUser(ctx context.Context, id uint) (*usecase.UserOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to get user", slog.Any("userID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to get user")
	}

	return usecase.ToUserOutput(user), nil
}

// UpdateUser applies the non-nil fields of input. A non-blank password is re-hashed.
// Only the fields named in input are written back.
func (srv *userService) UpdateUser(ctx context.Context, id uint, input *usecase.UpdateUserInput) (*usecase.UserOutput, error) {
	user, err := srv.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to load user for update", slog.Any("userID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to load user for update")
	}

	update := &entity.UserUpdate{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		UpdatedAt: srv.now().UTC(),
	}
	if input.Password != nil && strings.TrimSpace(*input.Password) != "" {
		hashedPassword, err := srv.hasher.Hash(*input.Password)
		if err != nil {
			srv.log(ctx).Error("Failed to hash password during update", slog.Any("userID", id), slog.Any("error", err))

			return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
		}
		update.PasswordHash = &hashedPassword
	}

	if err := srv.userRepo.Update(ctx, id, update); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}
		srv.log(ctx).Error("Failed to update user", slog.Any("userID", id), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to update user")
	}
	update.Apply(user)

	srv.log(ctx).Info("User updated", slog.Any("userID", id))
	publishUserEvent(ctx, srv.publisher, srv.log(ctx), service.UserEventUpdated, user, update.UpdatedAt)

	return usecase.ToUserOutput(user), nil
}

// DeleteUser removes the user and reports whether it existed.
func (srv *userService) DeleteUser(ctx context.Context, id uint) (bool, error) {
	deleted, err := srv.userRepo.Delete(ctx, id)
	if err != nil {
		srv.log(ctx).Error("Failed to delete user", slog.Any("userID", id), slog.Any("error", err))

		return false, errors.Wrap(err, "failed to delete user")
	}

	if deleted {
		srv.log(ctx).Info("User deleted", slog.Any("userID", id))
		publishUserEvent(ctx, srv.publisher, srv.log(ctx), service.UserEventDeleted, &entity.User{ID: id}, srv.now())
	}

	return deleted, nil
}
