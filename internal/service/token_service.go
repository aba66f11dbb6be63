package service

import (
	"context"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/finoa/finos-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims are the custom claims carried by session tokens
type TokenClaims struct {
	Email string `json:"email"`
}

// Validate implements validator.CustomClaims
func (c *TokenClaims) Validate(ctx context.Context) error {
	return nil
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 session tokens
type TokenService struct {
	secret    []byte
	issuer    string
	audience  string
	ttl       time.Duration
	validator *validator.Validator
	now       func() time.Time
}

// NewTokenService creates a TokenService signing with secret
func NewTokenService(secret, issuer, audience string, ttl time.Duration) (*TokenService, error) {
	key := []byte(secret)
	keyFunc := func(ctx context.Context) (interface{}, error) {
		return key, nil
	}

	v, err := validator.New(
		keyFunc,
		validator.HS256,
		issuer,
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &TokenClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("create token validator: %w", err)
	}

	return &TokenService{
		secret:    key,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		validator: v,
		now:       time.Now,
	}, nil
}

// Issue signs a token for user and returns it with its expiry
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := sessionClaims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks a token and returns the owner it was issued to
func (s *TokenService) Validate(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.validator.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	validated, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return uuid.Nil, domain.ErrUnauthorized
	}

	ownerID, err := uuid.Parse(validated.RegisteredClaims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed subject", domain.ErrUnauthorized)
	}
	return ownerID, nil
}
