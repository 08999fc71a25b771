package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"
	"authsvc/internal/domain/service"
	mockRepo "authsvc/internal/mocks/repository"
	mockSvc "authsvc/internal/mocks/service"
	"authsvc/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("UTC+8", 8*60*60))

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service      usecase.AuthUsecase
	userRepo     *mockRepo.MockUserRepository
	hasher       *mockSvc.MockPasswordHasher
	tokenService *mockSvc.MockTokenService
	publisher    *mockSvc.MockEventPublisher
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	tokenService := mockSvc.NewMockTokenService(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	svc := newAuthService(AuthServiceParams{
		UserRepo:     userRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Publisher:    publisher,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, func() time.Time { return fixedNow })

	return authServiceFixtures{
		service:      svc,
		userRepo:     userRepo,
		hasher:       hasher,
		tokenService: tokenService,
		publisher:    publisher,
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	input := &usecase.RegisterInput{
		Username:  "alice",
		Email:     "a@x.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		Password:  "pw1",
	}

	fx.userRepo.EXPECT().FindByUsername(ctx, "alice").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("hashed_pw1", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) {
			assert.Equal(t, "alice", user.Username)
			assert.Equal(t, "a@x.com", user.Email)
			assert.Equal(t, "hashed_pw1", user.PasswordHash)
			assert.Equal(t, time.UTC, user.CreatedAt.Location())
			assert.True(t, fixedNow.Equal(user.CreatedAt))
			user.ID = 1
		}).
		Return(nil)
	fx.publisher.EXPECT().
		PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).
		Run(func(_ context.Context, event *service.UserEvent) {
			assert.Equal(t, service.UserEventRegistered, event.Type)
			assert.Equal(t, uint(1), event.UserID)
			assert.Equal(t, "alice", event.Username)
			assert.Equal(t, time.UTC, event.OccurredAt.Location())
		}).
		Return(nil)
	fx.tokenService.EXPECT().Issue(uint(1), "alice").Return("signed.token.value", nil)
	fx.tokenService.EXPECT().ExpiresIn().Return(time.Hour)

	output, err := fx.service.Register(ctx, input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Equal(t, "signed.token.value", output.Token)
	assert.Equal(t, time.Hour, output.ExpiresIn)
	assert.Equal(t, &usecase.UserOutput{ID: 1, Username: "alice", Email: "a@x.com", FullName: "Alice Liddell"}, output.User)
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().
		FindByUsername(ctx, "ALICE").
		Return(&entity.User{ID: 1, Username: "alice"}, nil)

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "ALICE", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAuthService_Register_LostRace(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "carol").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("hashed", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Return(domainerrors.ErrUserAlreadyExists.WrapMessage("username already exists"))

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "carol", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAuthService_Register_LookupFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	fx.userRepo.EXPECT().FindByUsername(ctx, "dave").Return(nil, storeErr)

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "dave", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, storeErr))
	assert.False(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAuthService_Register_CreateFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	storeErr := errors.New("disk full")

	fx.userRepo.EXPECT().FindByUsername(ctx, "erin").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("hashed", nil)
	fx.userRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(storeErr)

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "erin", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, storeErr))
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "frank").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("", errors.New("hash failed"))

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "frank", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordHashFailed))
}

func TestAuthService_Register_TokenFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "gina").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("hashed", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) { user.ID = 9 }).
		Return(nil)
	fx.publisher.EXPECT().PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).Return(nil)
	fx.tokenService.EXPECT().Issue(uint(9), "gina").Return("", errors.New("signing failed"))

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "gina", Password: "pw1"})

	require.Error(t, err)
	assert.Nil(t, output)
	assert.True(t, errors.Is(err, domainerrors.ErrTokenIssueFailed))
}

func TestAuthService_Register_PublishFailureIsIgnored(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "hank").Return(nil, repository.ErrUserNotFound)
	fx.hasher.EXPECT().Hash("pw1").Return("hashed", nil)
	fx.userRepo.EXPECT().
		Create(ctx, mock.AnythingOfType("*entity.User")).
		Run(func(_ context.Context, user *entity.User) { user.ID = 10 }).
		Return(nil)
	fx.publisher.EXPECT().
		PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).
		Return(errors.New("broker unavailable"))
	fx.tokenService.EXPECT().Issue(uint(10), "hank").Return("hank.token", nil)
	fx.tokenService.EXPECT().ExpiresIn().Return(time.Hour)

	output, err := fx.service.Register(ctx, &usecase.RegisterInput{Username: "hank", Password: "pw1"})

	require.NoError(t, err)
	assert.Equal(t, "hank.token", output.Token)
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	stored := &entity.User{ID: 2, Username: "bob", Email: "b@x.com", PasswordHash: "hashed_pw1"}

	fx.userRepo.EXPECT().FindByUsername(ctx, "bob").Return(stored, nil)
	fx.hasher.EXPECT().Check("pw1", "hashed_pw1").Return(true)
	fx.tokenService.EXPECT().Issue(uint(2), "bob").Return("bob.token", nil)
	fx.tokenService.EXPECT().ExpiresIn().Return(30 * time.Minute)

	output, ok, err := fx.service.Authenticate(ctx, &usecase.LoginInput{Username: "bob", Password: "pw1"})

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bob.token", output.Token)
	assert.Equal(t, 30*time.Minute, output.ExpiresIn)
	assert.Equal(t, uint(2), output.User.ID)
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().
		FindByUsername(ctx, "bob").
		Return(&entity.User{ID: 2, Username: "bob", PasswordHash: "hashed_pw1"}, nil)
	fx.hasher.EXPECT().Check("wrong", "hashed_pw1").Return(false)

	output, ok, err := fx.service.Authenticate(ctx, &usecase.LoginInput{Username: "bob", Password: "wrong"})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, output)
}

func TestAuthService_Authenticate_UnknownUser(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByUsername(ctx, "nouser").Return(nil, repository.ErrUserNotFound)

	output, ok, err := fx.service.Authenticate(ctx, &usecase.LoginInput{Username: "nouser", Password: "anything"})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, output)
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	fx := createTestAuthService(t)
	ctx := context.Background()
	storeErr := errors.New("timeout")

	fx.userRepo.EXPECT().FindByUsername(ctx, "bob").Return(nil, storeErr)

	output, ok, err := fx.service.Authenticate(ctx, &usecase.LoginInput{Username: "bob", Password: "pw1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, storeErr))
	assert.False(t, ok)
	assert.Nil(t, output)
}
