// Package rediscache puts a read-through Redis cache in front of the user store.
package rediscache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"authsvc/internal/domain/entity"
	"authsvc/internal/domain/lifecycle"
	"authsvc/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// cachedUser is the cached form of a user. The password digest is never stored.
type cachedUser struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// cachedUserRepository caches FindByID and passes everything else through.
// Users returned by FindByID carry no PasswordHash, so credential checks go
// through FindByUsername, which always reaches the store.
type cachedUserRepository struct {
	next        repository.UserRepository
	client      *redis.Client
	prefix      string
	ttl         time.Duration
	loadTimeout time.Duration
	logger      *slog.Logger
	group       singleflight.Group

	// invalidations counts writes so a load that overlapped one drops what it cached.
	invalidations atomic.Uint64
}

// NewCachedUserRepository wraps next with a cache stored in client.
func NewCachedUserRepository(next repository.UserRepository, client *redis.Client, prefix string, ttl time.Duration, logger *slog.Logger) repository.UserRepository {
	return &cachedUserRepository{
		next:        next,
		client:      client,
		prefix:      prefix,
		ttl:         ttl,
		loadTimeout: lifecycle.DefaultTimeout,
		logger:      logger,
	}
}

func (repo *cachedUserRepository) keyByID(id uint) string {
	return repo.prefix + "user:" + strconv.FormatUint(uint64(id), 10)
}

// FindByID serves from the cache and loads misses once per key.
// The shared load is detached from any single caller, so one caller giving up
// does not fail the others waiting on the same key.
func (repo *cachedUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	key := repo.keyByID(id)

	if user, ok := repo.get(ctx, key); ok {
		return user, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := repo.group.DoChan(key, func() (any, error) {
		return repo.load(detached, key, id)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		// Callers sharing a load must not see each other's mutations.
		user := *res.Val.(*entity.User)

		return &user, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (repo *cachedUserRepository) load(ctx context.Context, key string, id uint) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, repo.loadTimeout)
	defer cancel()

	generation := repo.invalidations.Load()

	user, err := repo.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	repo.set(ctx, key, user)

	// A write landed while the row was in flight; what was just cached may predate it.
	if repo.invalidations.Load() != generation {
		repo.invalidate(ctx, key)
	}

	return user, nil
}

func (repo *cachedUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return repo.next.FindByUsername(ctx, username)
}

func (repo *cachedUserRepository) Create(ctx context.Context, user *entity.User) error {
	return repo.next.Create(ctx, user)
}

// Update writes through and drops the cached entry.
func (repo *cachedUserRepository) Update(ctx context.Context, id uint, update *entity.UserUpdate) error {
	if err := repo.next.Update(ctx, id, update); err != nil {
		return err
	}
	repo.evict(ctx, id)

	return nil
}

func (repo *cachedUserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return repo.next.List(ctx)
}

// Delete removes the user and drops the cached entry.
func (repo *cachedUserRepository) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := repo.next.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	repo.evict(ctx, id)

	return deleted, nil
}

// get reports a miss on any cache failure; the store stays the source of truth.
func (repo *cachedUserRepository) get(ctx context.Context, key string) (*entity.User, bool) {
	data, err := repo.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			repo.logger.Warn("User cache read failed", slog.String("key", key), slog.Any("error", err))
		}

		return nil, false
	}

	var cached cachedUser
	if err := json.Unmarshal(data, &cached); err != nil {
		repo.logger.Warn("User cache entry is corrupt", slog.String("key", key), slog.Any("error", err))
		repo.invalidate(ctx, key)

		return nil, false
	}

	return &entity.User{
		ID:        cached.ID,
		Username:  cached.Username,
		Email:     cached.Email,
		FirstName: cached.FirstName,
		LastName:  cached.LastName,
		CreatedAt: cached.CreatedAt,
		UpdatedAt: cached.UpdatedAt,
	}, true
}

func (repo *cachedUserRepository) set(ctx context.Context, key string, user *entity.User) {
	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if err != nil {
		repo.logger.Warn("Failed to encode user cache entry", slog.String("key", key), slog.Any("error", err))

		return
	}

	if err := repo.client.Set(ctx, key, data, repo.ttl).Err(); err != nil {
		repo.logger.Warn("User cache write failed", slog.String("key", key), slog.Any("error", err))
	}
}

// evict runs after a successful write. In-flight loads for the key are
// forgotten so later readers start a fresh one.
func (repo *cachedUserRepository) evict(ctx context.Context, id uint) {
	key := repo.keyByID(id)
	repo.invalidations.Add(1)
	repo.group.Forget(key)
	repo.invalidate(ctx, key)
}

func (repo *cachedUserRepository) invalidate(ctx context.Context, key string) {
	if err := repo.client.Del(ctx, key).Err(); err != nil {
		repo.logger.Warn("User cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}
