package handler

import (
	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes registers all API routes. askLimiter may be nil.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, askLimiter *middleware.RateLimiter, healthHandler *HealthHandler, authHandler *AuthHandler, transactionHandler *TransactionHandler, askHandler *AskHandler, summaryHandler *SummaryHandler, wsHandler *WebSocketHandler) {
	api := e.Group("/api")

	// Public routes
	api.GET("/health", healthHandler.Health)
	api.GET("/openapi.json", ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// WebSocket authenticates with ?token= since browsers cannot set headers on upgrade
	api.GET("/ws", wsHandler.HandleWS)

	// Protected routes
	protected := api.Group("", authMiddleware.Authenticate())

	protected.POST("/transactions", transactionHandler.CreateTransaction)

	if askLimiter != nil {
		protected.POST("/ask", askHandler.Ask, middleware.RateLimitMiddleware(askLimiter))
	} else {
		protected.POST("/ask", askHandler.Ask)
	}

	protected.GET("/summary", summaryHandler.GetSummary)
	if summaryHandler.summaryService.ExportEnabled() {
		protected.POST("/summary/export", summaryHandler.ExportSummary)
	}
}
