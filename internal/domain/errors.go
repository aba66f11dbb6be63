package domain

import "errors"

// Domain errors
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrStoreUnavailable   = errors.New("store unavailable")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrMissingFields      = errors.New("missing required fields")

	ErrTransactionNotFound = errors.New("transaction not found")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrInvalidCategory     = errors.New("invalid category")
	ErrInvalidRange        = errors.New("range start is after range end")

	ErrQuestionRequired = errors.New("question is required")
	ErrAssistantFailed  = errors.New("assistant request failed")
	ErrExportDisabled   = errors.New("summary export is not configured")
)
