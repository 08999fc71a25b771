// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
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

// authService implements the AuthUsecase interface.
type authService struct {
	userRepo     repository.UserRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	publisher    service.EventPublisher
	logger       *slog.Logger
	now          func() time.Time
}

// AuthServiceParams holds dependencies for AuthService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	UserRepo     repository.UserRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return newAuthService(params, time.Now)
}

func newAuthService(params AuthServiceParams, now func() time.Time) *authService {
	return &authService{
		userRepo:     params.UserRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		publisher:    params.Publisher,
		logger:       params.Logger,
		now:          now,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates the identity and signs its first token.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.AuthOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("username", input.Username))

	_, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err == nil {
		srv.log(ctx).Warn("Username already taken", slog.String("username", input.Username))

		return nil, domainerrors.ErrUserAlreadyExists.WrapMessage("username already exists")
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		srv.log(ctx).Error("Failed to look up username during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to look up username")
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrPasswordHashFailed, err.Error())
	}

	newUser := &entity.User{
		Username:     input.Username,
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hashedPassword,
		CreatedAt:    srv.now().UTC(),
	}

	// The pre-read above can lose a race; the store's unique index settles it.
	if err := srv.userRepo.Create(ctx, newUser); err != nil {
		if errors.Is(err, domainerrors.ErrUserAlreadyExists) {
			srv.log(ctx).Warn("Username claimed concurrently", slog.String("username", input.Username))

			return nil, err
		}
		srv.log(ctx).Error("Failed to create user during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create user during registration")
	}
	publishUserEvent(ctx, srv.publisher, srv.log(ctx), service.UserEventRegistered, newUser, srv.now())

	output, err := srv.issue(newUser)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token after registration", slog.Any("userID", newUser.ID), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Info("Registration completed", slog.Any("userID", newUser.ID))

	return output, nil
}

// Authenticate verifies the credentials. Unknown users and wrong passwords look the same to the caller.
func (srv *authService) Authenticate(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, bool, error) {
	user, err := srv.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login attempt for unknown user")

			return nil, false, nil
		}
		srv.log(ctx).Error("Failed to look up user during login", slog.Any("error", err))

		return nil, false, errors.Wrap(err, "failed to look up user")
	}

	if !srv.hasher.Check(input.Password, user.PasswordHash) {
		srv.log(ctx).Warn("Password mismatch during login", slog.Any("userID", user.ID))

		return nil, false, nil
	}
	srv.upgradeHash(ctx, user, input.Password)

	output, err := srv.issue(user)
	if err != nil {
		srv.log(ctx).Error("Failed to issue token during login", slog.Any("userID", user.ID), slog.Any("error", err))

		return nil, false, err
	}

	srv.log(ctx).Debug("Login succeeded", slog.Any("userID", user.ID))

	return output, true, nil
}

// upgradeHash replaces a digest the configured hasher no longer produces, such as
// a SHA-256 digest kept after switching to bcrypt. Failures never block the login.
func (srv *authService) upgradeHash(ctx context.Context, user *entity.User, password string) {
	checker, ok := srv.hasher.(service.RehashChecker)
	if !ok || !checker.NeedsRehash(user.PasswordHash) {
		return
	}

	hashedPassword, err := srv.hasher.Hash(password)
	if err != nil {
		srv.log(ctx).Warn("Failed to rehash password on login", slog.Any("userID", user.ID), slog.Any("error", err))

		return
	}

	update := &entity.UserUpdate{PasswordHash: &hashedPassword, UpdatedAt: srv.now().UTC()}
	if err := srv.userRepo.Update(ctx, user.ID, update); err != nil {
		srv.log(ctx).Warn("Failed to store rehashed password", slog.Any("userID", user.ID), slog.Any("error", err))

		return
	}
	update.Apply(user)
	srv.log(ctx).Info("Password hash upgraded", slog.Any("userID", user.ID))
}

func (srv *authService) issue(user *entity.User) (*usecase.AuthOutput, error) {
	token, err := srv.tokenService.Issue(user.ID, user.Username)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrTokenIssueFailed, err.Error())
	}

	return &usecase.AuthOutput{
		Token:     token,
		ExpiresIn: srv.tokenService.ExpiresIn(),
		User:      usecase.ToUserOutput(user),
	}, nil
}
