package rediscache

import (
	"context"
	"log/slog"

	"authsvc/config"
	"authsvc/internal/domain/lifecycle"
	"authsvc/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// DecorateParams defines the dependencies of DecorateUserRepository.
type DecorateParams struct {
	fx.In

	Lc       fx.Lifecycle
	Config   *config.Config
	Logger   *slog.Logger
	UserRepo repository.UserRepository
}

// DecorateUserRepository wraps the user store with the Redis cache when redis is configured.
func DecorateUserRepository(params DecorateParams) repository.UserRepository {
	cfg := params.Config.Redis
	if cfg == nil {
		params.Logger.Info("Redis not configured, user cache disabled")

		return params.UserRepo
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	params.Lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrapf(err, "failed to ping redis at %s", cfg.Addr)
			}
			params.Logger.Info("User cache enabled",
				slog.String("addr", cfg.Addr),
				slog.Duration("ttl", cfg.TTL),
			)

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return NewCachedUserRepository(params.UserRepo, client, cfg.Prefix, cfg.TTL, params.Logger)
}
