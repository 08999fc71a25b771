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

type userServiceFixtures struct {
	service   usecase.UserUsecase
	userRepo  *mockRepo.MockUserRepository
	hasher    *mockSvc.MockPasswordHasher
	publisher *mockSvc.MockEventPublisher
}

func createTestUserService(t *testing.T) userServiceFixtures {
	userRepo := mockRepo.NewMockUserRepository(t)
	hasher := mockSvc.NewMockPasswordHasher(t)
	publisher := mockSvc.NewMockEventPublisher(t)

	svc := newUserService(UserServiceParams{
		UserRepo:  userRepo,
		Hasher:    hasher,
		Publisher: publisher,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, func() time.Time { return fixedNow })

	return userServiceFixtures{service: svc, userRepo: userRepo, hasher: hasher, publisher: publisher}
}

func strPtr(s string) *string { return &s }

func TestUserService_ListUsers(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().List(ctx).Return([]*entity.User{
		{ID: 1, Username: "alice", FirstName: "Alice"},
		{ID: 2, Username: "bob", LastName: "Builder"},
	}, nil)

	users, err := fx.service.ListUsers(ctx)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alice", users[0].FullName)
	assert.Equal(t, "Builder", users[1].FullName)
}

func TestUserService_ListUsers_Empty(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().List(ctx).Return(nil, nil)

	users, err := fx.service.ListUsers(ctx)

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestUserService_GetUser(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		fx := createTestUserService(t)
		ctx := context.Background()
		fx.userRepo.EXPECT().FindByID(ctx, uint(3)).Return(&entity.User{ID: 3, Username: "carol"}, nil)

		user, err := fx.service.GetUser(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, "carol", user.Username)
	})

	t.Run("not found", func(t *testing.T) {
		fx := createTestUserService(t)
		ctx := context.Background()
		fx.userRepo.EXPECT().FindByID(ctx, uint(4)).Return(nil, repository.ErrUserNotFound)

		user, err := fx.service.GetUser(ctx, 4)

		assert.Nil(t, user)
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
	})

	t.Run("store failure", func(t *testing.T) {
		fx := createTestUserService(t)
		ctx := context.Background()
		storeErr := errors.New("boom")
		fx.userRepo.EXPECT().FindByID(ctx, uint(5)).Return(nil, storeErr)

		_, err := fx.service.GetUser(ctx, 5)

		assert.True(t, errors.Is(err, storeErr))
	})
}

func TestUserService_UpdateUser_AppliesOnlyProvidedFields(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	existing := &entity.User{
		ID:           6,
		Username:     "dave",
		Email:        "old@x.com",
		FirstName:    "Dave",
		LastName:     "Old",
		PasswordHash: "old_hash",
	}

	fx.userRepo.EXPECT().FindByID(ctx, uint(6)).Return(existing, nil)
	fx.hasher.EXPECT().Hash("new-secret").Return("new_hash", nil)
	fx.userRepo.EXPECT().
		Update(ctx, uint(6), mock.AnythingOfType("*entity.UserUpdate")).
		Run(func(_ context.Context, _ uint, update *entity.UserUpdate) {
			require.NotNil(t, update.Email)
			assert.Equal(t, "new@x.com", *update.Email)
			assert.Nil(t, update.FirstName)
			require.NotNil(t, update.LastName)
			assert.Equal(t, "New", *update.LastName)
			require.NotNil(t, update.PasswordHash)
			assert.Equal(t, "new_hash", *update.PasswordHash)
			assert.Equal(t, time.UTC, update.UpdatedAt.Location())
			assert.True(t, fixedNow.Equal(update.UpdatedAt))
		}).
		Return(nil)
	fx.publisher.EXPECT().
		PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).
		Run(func(_ context.Context, event *service.UserEvent) {
			assert.Equal(t, service.UserEventUpdated, event.Type)
			assert.Equal(t, uint(6), event.UserID)
			assert.Equal(t, "dave", event.Username)
			assert.True(t, fixedNow.Equal(event.OccurredAt))
		}).
		Return(nil)

	out, err := fx.service.UpdateUser(ctx, 6, &usecase.UpdateUserInput{
		Email:    strPtr("new@x.com"),
		LastName: strPtr("New"),
		Password: strPtr("new-secret"),
	})

	require.NoError(t, err)
	assert.Equal(t, "Dave New", out.FullName)
	assert.Equal(t, "new@x.com", out.Email)
}

func TestUserService_UpdateUser_BlankPasswordKeepsHash(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByID(ctx, uint(7)).Return(&entity.User{ID: 7, Username: "erin", PasswordHash: "kept"}, nil)
	fx.userRepo.EXPECT().
		Update(ctx, uint(7), mock.AnythingOfType("*entity.UserUpdate")).
		Run(func(_ context.Context, _ uint, update *entity.UserUpdate) {
			assert.Nil(t, update.PasswordHash)
		}).
		Return(nil)
	fx.publisher.EXPECT().PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).Return(nil)

	_, err := fx.service.UpdateUser(ctx, 7, &usecase.UpdateUserInput{Password: strPtr("   ")})

	require.NoError(t, err)
}

func TestUserService_UpdateUser_NotFound(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByID(ctx, uint(8)).Return(nil, repository.ErrUserNotFound)

	out, err := fx.service.UpdateUser(ctx, 8, &usecase.UpdateUserInput{Email: strPtr("x@x.com")})

	assert.Nil(t, out)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_UpdateUser_DeletedConcurrently(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().FindByID(ctx, uint(9)).Return(&entity.User{ID: 9, Username: "frank"}, nil)
	fx.userRepo.EXPECT().Update(ctx, uint(9), mock.AnythingOfType("*entity.UserUpdate")).Return(repository.ErrUserNotFound)

	_, err := fx.service.UpdateUser(ctx, 9, &usecase.UpdateUserInput{})

	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestUserService_DeleteUser(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().Delete(ctx, uint(10)).Return(true, nil).Once()
	fx.userRepo.EXPECT().Delete(ctx, uint(11)).Return(false, nil).Once()
	fx.publisher.EXPECT().
		PublishUserEvent(ctx, mock.MatchedBy(func(event *service.UserEvent) bool {
			return event.Type == service.UserEventDeleted && event.UserID == 10
		})).
		Return(nil).
		Once()

	deleted, err := fx.service.DeleteUser(ctx, 10)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = fx.service.DeleteUser(ctx, 11)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestUserService_DeleteUser_PublishFailureIsIgnored(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()

	fx.userRepo.EXPECT().Delete(ctx, uint(13)).Return(true, nil)
	fx.publisher.EXPECT().
		PublishUserEvent(ctx, mock.AnythingOfType("*service.UserEvent")).
		Return(errors.New("broker unavailable"))

	deleted, err := fx.service.DeleteUser(ctx, 13)

	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestUserService_DeleteUser_StoreFailure(t *testing.T) {
	fx := createTestUserService(t)
	ctx := context.Background()
	storeErr := errors.New("locked")

	fx.userRepo.EXPECT().Delete(ctx, uint(12)).Return(false, storeErr)

	deleted, err := fx.service.DeleteUser(ctx, 12)

	assert.False(t, deleted)
	assert.True(t, errors.Is(err, storeErr))
}
