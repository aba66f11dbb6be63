package handler

import (
	"net/http"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// AnswerObserver is told about every answered question
type AnswerObserver interface {
	ObserveAnswer(source string, computed bool)
}

// AskHandler handles free-text spending questions
type AskHandler struct {
	askService *service.AskService
	observer   AnswerObserver
	now        func() time.Time
}

// NewAskHandler creates a new AskHandler. observer may be nil.
func NewAskHandler(askService *service.AskService, observer AnswerObserver) *AskHandler {
	return &AskHandler{
		askService: askService,
		observer:   observer,
		now:        time.Now,
	}
}

// AskRequest represents the ask request body
type AskRequest struct {
	Query string `json:"query"`
}

// ComputedResponse is the deterministic figure behind an answer
type ComputedResponse struct {
	Total    string `json:"total"`
	Count    int64  `json:"count"`
	Category string `json:"category"`
	Period   string `json:"period"`
}

// AskResponse represents the ask response body
type AskResponse struct {
	Answer   string            `json:"answer"`
	Computed *ComputedResponse `json:"computed,omitempty"`
}

// Ask handles POST /api/ask
// @Summary Ask a spending question
// @Description Answers from recent transactions. Questions naming a category and "last month" carry the exact figure.
// @Tags ask
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AskRequest true "Question"
// @Success 200 {object} AskResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /ask [post]
func (h *AskHandler) Ask(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)

	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	answer, err := h.askService.Answer(c.Request().Context(), ownerID, req.Query, h.now())
	if err != nil {
		return respondError(c, err, "Failed to answer question")
	}

	if h.observer != nil {
		h.observer.ObserveAnswer(answer.Source, answer.Computed != nil)
	}
	return c.JSON(http.StatusOK, toAskResponse(answer))
}

func toAskResponse(answer *domain.Answer) AskResponse {
	resp := AskResponse{Answer: answer.Text}
	if answer.Computed != nil {
		resp.Computed = &ComputedResponse{
			Total:    answer.Computed.Total.StringFixed(2),
			Count:    answer.Computed.Count,
			Category: string(answer.Computed.Category),
			Period:   answer.Computed.Period,
		}
	}
	return resp
}
