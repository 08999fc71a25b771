package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"authsvc/config"
	"authsvc/internal/domain/service"
)

const minSecretLength = 16

// tokenClaims is the payload of an identity token: the username under "name",
// the numeric user ID under "sub", plus issuer, audience and validity window.
type tokenClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// jwtService is a concrete implementation of the TokenService interface using HS256 JWTs.
type jwtService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewJWTService is the constructor for jwtService.
// It fails fast on signing configuration that cannot produce verifiable tokens.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	svc, err := newJWTService(cfg.JWT, time.Now)
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func newJWTService(cfg config.JWTConfig, now func() time.Time) (*jwtService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt secret must be provided")
	}
	if len(cfg.Secret) < minSecretLength {
		return nil, errors.Errorf("jwt secret must be at least %d bytes", minSecretLength)
	}
	if cfg.ExpirationInMinutes <= 0 {
		return nil, errors.New("jwt expiration must be positive")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("jwt issuer and audience must be provided")
	}

	return &jwtService{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      cfg.Expiration(),
		now:      now,
	}, nil
}

// Issue creates a signed token for the given user, valid from now for the configured lifetime.
func (s *jwtService) Issue(userID uint, username string) (string, error) {
	issuedAt := s.now().UTC().Truncate(time.Second)

	claims := tokenClaims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Validate checks signature, issuer, audience and lifetime. Any failure yields (nil, false).
func (s *jwtService) Validate(tokenString string) (*service.Claims, bool) {
	claims := &tokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, false
	}

	if claims.IssuedAt == nil {
		return nil, false
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || uint64(uint(userID)) != userID {
		return nil, false
	}

	return &service.Claims{
		UserID:    uint(userID),
		Username:  claims.Name,
		Issuer:    claims.Issuer,
		Audience:  []string(claims.Audience),
		IssuedAt:  claims.IssuedAt.UTC(),
		ExpiresAt: claims.ExpiresAt.UTC(),
	}, true
}

// ExpiresIn returns the configured token lifetime.
func (s *jwtService) ExpiresIn() time.Duration {
	return s.ttl
}
