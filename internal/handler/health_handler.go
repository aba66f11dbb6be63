package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ServiceName identifies this server in health responses
const ServiceName = "finos-server"

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint
type HealthHandler struct {
	store   Pinger
	timeout time.Duration
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, timeout: 2 * time.Second}
}

// HealthResponse represents the health response body
type HealthResponse struct {
	Status string `json:"status"`
	Name   string `json:"name"`
	DB     string `json:"db"`
}

// Health handles GET /api/health. The process is up even when the store is not.
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	db := "up"
	if h.store == nil {
		db = "down"
	} else if err := h.store.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Store ping failed")
		db = "down"
	}

	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", Name: ServiceName, DB: db})
}
