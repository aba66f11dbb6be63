package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	location           *time.Location
}

// NewTransactionHandler creates a new TransactionHandler. Bare dates are read in loc.
func NewTransactionHandler(transactionService *service.TransactionService, loc *time.Location) *TransactionHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TransactionHandler{
		transactionService: transactionService,
		location:           loc,
	}
}

// CreateTransactionRequest represents the create transaction request body.
// Amount accepts a JSON number or a numeric string.
type CreateTransactionRequest struct {
	Name     string      `json:"name" validate:"required"`
	Amount   json.Number `json:"amount" validate:"required"`
	Category string      `json:"category" validate:"required"`
	Date     *string     `json:"date,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Amount    string `json:"amount"`
	Category  string `json:"category"`
	Date      string `json:"date"`
	CreatedAt string `json:"createdAt"`
}

// CreateTransactionResponse wraps the created transaction
type CreateTransactionResponse struct {
	Item TransactionResponse `json:"item"`
}

// CreateTransaction handles POST /api/transactions
// @Summary Add an expense
// @Description Record a transaction for the authenticated user
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTransactionRequest true "Transaction"
// @Success 201 {object} CreateTransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Missing fields", validationErrors(err))
	}

	amount, err := decimal.NewFromString(req.Amount.String())
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{{Field: "amount", Message: "Invalid amount format"}})
	}

	input := service.CreateTransactionInput{
		Name:     req.Name,
		Amount:   amount,
		Category: domain.Category(req.Category),
	}
	if req.Date != nil && *req.Date != "" {
		date, err := parseDate(*req.Date, h.location)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "date", Message: "Use YYYY-MM-DD or RFC 3339"}})
		}
		input.Date = &date
	}

	tx, err := h.transactionService.CreateTransaction(c.Request().Context(), ownerID, input)
	if err != nil {
		return respondError(c, err, "Failed to create transaction")
	}

	return c.JSON(http.StatusCreated, CreateTransactionResponse{Item: toTransactionResponse(tx)})
}

// parseDate accepts a full timestamp or a bare calendar date in loc
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, loc)
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:        tx.ID.String(),
		Name:      tx.Name,
		Amount:    tx.Amount.StringFixed(2),
		Category:  string(tx.Category),
		Date:      tx.Date.UTC().Format(time.RFC3339),
		CreatedAt: tx.CreatedAt.UTC().Format(time.RFC3339),
	}
}
