package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration and login
type AuthService struct {
	userRepo   domain.UserRepository
	tokens     *TokenService
	bcryptCost int
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// AuthResult is returned after a successful register or login
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// Register creates an account and signs it in. Emails are stored lower-cased.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID.String()).Msg("Registered new user")
	return s.signIn(user)
}

// Login verifies credentials. Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrMissingFields
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Debug().Str("user_id", user.ID.String()).Msg("Password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	return s.signIn(user)
}

func (s *AuthService) signIn(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
