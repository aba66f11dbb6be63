package middleware

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

// OwnerIDKey is the context key for the authenticated owner
const OwnerIDKey contextKey = "owner_id"

// TokenValidator resolves a bearer token to the owner it was issued to
type TokenValidator interface {
	Validate(ctx context.Context, token string) (uuid.UUID, error)
}

// AuthMiddleware provides bearer token validation
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Authenticate returns an Echo middleware that requires a valid bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorizedError(c, "Missing token")
			}

			ownerID, err := m.tokens.Validate(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			ctx := context.WithValue(c.Request().Context(), OwnerIDKey, ownerID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetOwnerID extracts the authenticated owner from the context
func GetOwnerID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(OwnerIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
