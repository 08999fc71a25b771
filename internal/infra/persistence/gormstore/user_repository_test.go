package gormstore

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"authsvc/config"
	"authsvc/internal/domain/entity"
	domainerrors "authsvc/internal/domain/errors"
	"authsvc/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.DriverSQLite, SQLitePath: ":memory:"}}
	db, err := Open(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func newTestUser(username string) *entity.User {
	return &entity.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    "Test",
		LastName:     "User",
		PasswordHash: "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestUserRepository_CreateAndFind(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newTestUser("Alice")
	require.NoError(t, repo.Create(ctx, user))
	assert.NotZero(t, user.ID)

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Username)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)
	assert.True(t, user.CreatedAt.Equal(byID.CreatedAt))
	assert.Nil(t, byID.UpdatedAt)

	for _, name := range []string{"alice", "ALICE", "Alice"} {
		byName, err := repo.FindByUsername(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, user.ID, byName.ID)
	}
}

func TestUserRepository_NotFound(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 999)
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))

	_, err = repo.FindByUsername(ctx, "nouser")
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestUserRepository_CreateRejectsDuplicateUsernameIgnoringCase(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("alice")))

	err := repo.Create(ctx, newTestUser("ALICE"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_ConcurrentCreateKeepsSingleUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Create(ctx, newTestUser("carol"))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domainerrors.ErrUserAlreadyExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicts)
}

func TestUserRepository_Update(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newTestUser("dave")
	require.NoError(t, repo.Create(ctx, user))

	updatedAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	email := "dave@new.example.com"
	firstName := ""
	passwordHash := "newhash"
	require.NoError(t, repo.Update(ctx, user.ID, &entity.UserUpdate{
		Email:        &email,
		FirstName:    &firstName,
		PasswordHash: &passwordHash,
		UpdatedAt:    updatedAt,
	}))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "dave@new.example.com", got.Email)
	assert.Empty(t, got.FirstName)
	assert.Equal(t, "User", got.LastName)
	assert.Equal(t, "newhash", got.PasswordHash)
	require.NotNil(t, got.UpdatedAt)
	assert.True(t, updatedAt.Equal(*got.UpdatedAt))
	assert.True(t, user.CreatedAt.Equal(got.CreatedAt))
}

func TestUserRepository_UpdateLeavesUntouchedColumns(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	user := newTestUser("gina")
	require.NoError(t, repo.Create(ctx, user))

	// A password change lands first, then a profile edit made from an older read.
	newHash := "rotated-hash"
	require.NoError(t, repo.Update(ctx, user.ID, &entity.UserUpdate{PasswordHash: &newHash, UpdatedAt: time.Now().UTC()}))

	email := "gina@new.example.com"
	require.NoError(t, repo.Update(ctx, user.ID, &entity.UserUpdate{Email: &email, UpdatedAt: time.Now().UTC()}))

	got, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "rotated-hash", got.PasswordHash)
	assert.Equal(t, "gina@new.example.com", got.Email)
	assert.Equal(t, "Test", got.FirstName)
}

func TestUserRepository_UpdateMissingUser(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	email := "ghost@example.com"
	err := repo.Update(context.Background(), 42, &entity.UserUpdate{Email: &email, UpdatedAt: time.Now().UTC()})
	assert.True(t, errors.Is(err, repository.ErrUserNotFound))
}

func TestUserRepository_ListAndDelete(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))
	ctx := context.Background()

	first := newTestUser("erin")
	second := newTestUser("frank")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "erin", users[0].Username)
	assert.Equal(t, "frank", users[1].Username)

	deleted, err := repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	users, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepository_PropagatesCancellation(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindByUsername(ctx, "alice")
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrUserNotFound))
}
