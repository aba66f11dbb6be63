package handler

import (
	"net/http"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRequest represents the register request body
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and receive a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Account details"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Missing required fields", validationErrors(err))
	}

	result, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Failed to register user")
	}
	return c.JSON(http.StatusCreated, toAuthResponse(result))
}

// Login handles POST /api/auth/login
// @Summary Login
// @Description Exchange credentials for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Missing credentials", validationErrors(err))
	}

	result, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Failed to log in")
	}
	return c.JSON(http.StatusOK, toAuthResponse(result))
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID.String(),
		Name:  user.Name,
		Email: user.Email,
	}
}

func toAuthResponse(result *service.AuthResult) AuthResponse {
	return AuthResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.UTC().Format(time.RFC3339),
		User:      toUserResponse(result.User),
	}
}
