package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/finoa/finos-backend/internal/service"
	"github.com/finoa/finos-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthHandler(t *testing.T) (*AuthHandler, *service.TokenService) {
	t.Helper()
	tokens, err := service.NewTokenService("handler-test-secret-0123456789abcdef", "finos-test", "finos-api", time.Hour)
	require.NoError(t, err)
	return NewAuthHandler(service.NewAuthService(testutil.NewMockUserRepository(), tokens)), tokens
}

func TestRegister_Success(t *testing.T) {
	h, tokens := newTestAuthHandler(t)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/auth/register",
		`{"name": "Asha", "email": "Asha@Example.com", "password": "s3cret-pass"}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, "Asha", resp.User.Name)
	assert.NotEmpty(t, resp.ExpiresAt)
	assert.NotContains(t, rec.Body.String(), "password")

	ownerID, err := tokens.Validate(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, ownerID.String())
}

func TestRegister_MissingFields(t *testing.T) {
	h, _ := newTestAuthHandler(t)

	c, rec := newJSONContext(newTestEcho(), http.MethodPost, "/api/auth/register", `{"email": "a@example.com"}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	fields := make([]string, 0, len(problem.Errors))
	for _, fe := range problem.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"name", "password"}, fields)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	e := newTestEcho()

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	c, rec = newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"name": "Other", "email": "ASHA@example.com", "password": "another-pass"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogin(t *testing.T) {
	h, _ := newTestAuthHandler(t)
	e := newTestEcho()

	c, rec := newJSONContext(e, http.MethodPost, "/api/auth/register",
		`{"name": "Asha", "email": "asha@example.com", "password": "s3cret-pass"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"success", `{"email": "Asha@example.com", "password": "s3cret-pass"}`, http.StatusOK},
		{"wrong password", `{"email": "asha@example.com", "password": "nope"}`, http.StatusUnauthorized},
		{"unknown email", `{"email": "ghost@example.com", "password": "s3cret-pass"}`, http.StatusUnauthorized},
		{"missing password", `{"email": "asha@example.com"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(e, http.MethodPost, "/api/auth/login", tt.body)

			require.NoError(t, h.Login(c))
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				var resp AuthResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}
