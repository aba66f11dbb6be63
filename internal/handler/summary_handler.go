package handler

import (
	"net/http"
	"time"

	"github.com/finoa/finos-backend/internal/domain"
	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// SummaryObserver is told about every built summary
type SummaryObserver interface {
	ObserveSummary(format string)
}

// SummaryHandler serves the spending summary
type SummaryHandler struct {
	summaryService *service.SummaryService
	observer       SummaryObserver
	now            func() time.Time
}

// NewSummaryHandler creates a new SummaryHandler. observer may be nil.
func NewSummaryHandler(summaryService *service.SummaryService, observer SummaryObserver) *SummaryHandler {
	return &SummaryHandler{
		summaryService: summaryService,
		observer:       observer,
		now:            time.Now,
	}
}

// CategoryTotalResponse is one category row
type CategoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

// MonthTotalResponse is one month row
type MonthTotalResponse struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Total string `json:"total"`
}

// SummaryResponse represents the summary response body
type SummaryResponse struct {
	ByCategory      []CategoryTotalResponse `json:"byCategory"`
	Monthly         []MonthTotalResponse    `json:"monthly"`
	LastMonthTotals map[string]string       `json:"lastMonthTotals"`
}

// SummaryExportResponse points at an uploaded CSV
type SummaryExportResponse struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

// GetSummary handles GET /api/summary
// @Summary Spending summary
// @Description This month's totals per category, monthly history and last month's totals. format=csv returns the category table as a download.
// @Tags summary
// @Produce json
// @Produce text/csv
// @Security BearerAuth
// @Param format query string false "Output format" Enums(json, csv)
// @Success 200 {object} SummaryResponse
// @Failure 401 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /summary [get]
func (h *SummaryHandler) GetSummary(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)

	summary, err := h.summaryService.BuildSummary(c.Request().Context(), ownerID, h.now())
	if err != nil {
		return respondError(c, err, "Failed to build summary")
	}

	if c.QueryParam("format") == "csv" {
		data, err := service.RenderCSV(summary.ByCategory)
		if err != nil {
			return respondError(c, err, "Failed to render summary")
		}
		h.observe("csv")
		c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename=summary.csv")
		return c.Blob(http.StatusOK, service.SummaryContentType, data)
	}

	h.observe("json")
	return c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// ExportSummary handles POST /api/summary/export
// @Summary Export summary
// @Description Upload this month's category table as CSV and return a temporary download link
// @Tags summary
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SummaryExportResponse
// @Failure 401 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /summary/export [post]
func (h *SummaryHandler) ExportSummary(c echo.Context) error {
	ownerID := middleware.GetOwnerID(c)

	export, err := h.summaryService.Export(c.Request().Context(), ownerID, h.now())
	if err != nil {
		return respondError(c, err, "Failed to export summary")
	}

	h.observe("export")
	return c.JSON(http.StatusOK, SummaryExportResponse{
		Key:       export.Key,
		URL:       export.URL,
		ExpiresAt: export.ExpiresAt.Format(time.RFC3339),
	})
}

func (h *SummaryHandler) observe(format string) {
	if h.observer != nil {
		h.observer.ObserveSummary(format)
	}
}

func toSummaryResponse(summary *domain.Summary) SummaryResponse {
	resp := SummaryResponse{
		ByCategory:      make([]CategoryTotalResponse, 0, len(summary.ByCategory)),
		Monthly:         make([]MonthTotalResponse, 0, len(summary.Monthly)),
		LastMonthTotals: make(map[string]string, len(summary.LastMonthTotals)),
	}
	for _, row := range summary.ByCategory {
		resp.ByCategory = append(resp.ByCategory, CategoryTotalResponse{
			Category: string(row.Category),
			Total:    row.Total.StringFixed(2),
		})
	}
	for _, row := range summary.Monthly {
		resp.Monthly = append(resp.Monthly, MonthTotalResponse{
			Year:  row.Year,
			Month: row.Month,
			Total: row.Total.StringFixed(2),
		})
	}
	for category, total := range summary.LastMonthTotals {
		resp.LastMonthTotals[string(category)] = total.StringFixed(2)
	}
	return resp
}

