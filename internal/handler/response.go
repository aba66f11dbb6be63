package handler

import (
	"errors"
	"net/http"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finos.app/errors/validation"
	ErrorTypeNotFound     = "https://finos.app/errors/not-found"
	ErrorTypeUnauthorized = "https://finos.app/errors/unauthorized"
	ErrorTypeConflict     = "https://finos.app/errors/conflict"
	ErrorTypeUnavailable  = "https://finos.app/errors/unavailable"
	ErrorTypeInternal     = "https://finos.app/errors/internal"
)

// serverErrorDetail is the only detail ever shown for internal failures
const serverErrorDetail = "Server error"

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   serverErrorDetail,
		Instance: c.Request().URL.Path,
	})
}

// respondError maps a service error to its HTTP response. Errors without a
// client-facing meaning are logged and collapse to 500.
func respondError(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Unauthorized")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return NewUnauthorizedError(c, "Invalid email or password")
	case errors.Is(err, domain.ErrEmailTaken):
		return NewConflictError(c, "Email already registered")
	case errors.Is(err, domain.ErrMissingFields):
		return NewValidationError(c, "Missing required fields", nil)
	case errors.Is(err, domain.ErrQuestionRequired):
		return NewValidationError(c, "Missing query", []ValidationError{{Field: "query", Message: "Query is required"}})
	case errors.Is(err, domain.ErrNameRequired):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "name", Message: "Name is required"}})
	case errors.Is(err, domain.ErrNameTooLong):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "name", Message: "Name must be 255 characters or less"}})
	case errors.Is(err, domain.ErrInvalidAmount):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "amount", Message: "Amount must be zero or greater"}})
	case errors.Is(err, domain.ErrInvalidCategory):
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "category", Message: "Unknown category"}})
	case errors.Is(err, domain.ErrInvalidRange):
		return NewValidationError(c, "Range start is after range end", nil)
	case errors.Is(err, domain.ErrExportDisabled):
		return NewNotFoundError(c, "Summary export is not configured")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(msg)
	return NewInternalError(c)
}
