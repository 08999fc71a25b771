package auth

import (
	"authsvc/config"
	"authsvc/internal/domain/service"

	"github.com/pkg/errors"
)

// NewPasswordHasher selects the credential scheme named in the auth config.
func NewPasswordHasher(cfg *config.Config) (service.PasswordHasher, error) {
	scheme := config.PasswordSchemeSHA256
	cost := 0
	if cfg.Auth != nil {
		if cfg.Auth.PasswordScheme != "" {
			scheme = cfg.Auth.PasswordScheme
		}
		cost = cfg.Auth.BcryptCost
	}

	switch scheme {
	case config.PasswordSchemeSHA256:
		return NewSHA256Hasher(), nil
	case config.PasswordSchemeBcrypt:
		if cost == 0 {
			return NewBcryptHasher(), nil
		}

		return NewBcryptHasherWithCost(cost), nil
	default:
		return nil, errors.Errorf("unknown password scheme: %s", scheme)
	}
}
