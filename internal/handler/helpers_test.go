package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// referenceNow is mid-January so "last month" is December of the prior year
var referenceNow = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewRequestValidator()
	return e
}

func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withOwner stores the owner the way the auth middleware does
func withOwner(c echo.Context, ownerID uuid.UUID) {
	req := c.Request()
	c.SetRequest(req.WithContext(context.WithValue(req.Context(), middleware.OwnerIDKey, ownerID)))
}

type recordingObserver struct {
	answers   []string
	summaries []string
}

func (r *recordingObserver) ObserveAnswer(source string, computed bool) {
	if computed {
		source += "+computed"
	}
	r.answers = append(r.answers, source)
}

func (r *recordingObserver) ObserveSummary(format string) {
	r.summaries = append(r.summaries, format)
}
