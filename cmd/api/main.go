package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finoa/finos-backend/internal/assistant"
	"github.com/finoa/finos-backend/internal/config"
	"github.com/finoa/finos-backend/internal/handler"
	"github.com/finoa/finos-backend/internal/metrics"
	"github.com/finoa/finos-backend/internal/middleware"
	"github.com/finoa/finos-backend/internal/repository/postgres"
	"github.com/finoa/finos-backend/internal/repository/storage"
	"github.com/finoa/finos-backend/internal/service"
	"github.com/finoa/finos-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Finos API
// @version 1.0
// @description Personal finance API: expenses, spending questions and summaries.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer followed by a space and the session token.
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load report timezone")
	}

	// Apply schema migrations before serving
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Connect to database
	pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, int32(cfg.DatabaseMaxConns))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)

	// Initialize WebSocket hub
	hub := websocket.NewHub()

	// Initialize metrics
	appMetrics := metrics.New()
	appMetrics.RegisterSessionGauge(hub.TotalClientCount)

	// Initialize services
	tokenService, err := service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.JWT.TTL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token service")
	}
	authService := service.NewAuthService(userRepo, tokenService)

	transactionService := service.NewTransactionService(transactionRepo)
	transactionService.SetEventPublisher(hub)

	aggregationService := service.NewAggregationService(transactionRepo, loc)
	llm := assistant.New(cfg.OpenAI)
	if llm == nil {
		log.Warn().Msg("OPENAI_API_KEY not set, answers use the built-in fallback")
	}
	askService := service.NewAskService(transactionRepo, aggregationService, service.NewClassifier(), llm, cfg.CurrencySymbol)

	summaryService := service.NewSummaryService(aggregationService)
	if cfg.S3.Bucket != "" {
		reportStore, err := storage.NewS3ReportStore(context.Background(), cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize report storage")
		}
		summaryService.SetReportStore(reportStore, cfg.S3.ExportTTL)
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("Summary export enabled")
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService)
	askLimiter := middleware.NewRateLimiter(cfg.AskRateLimit, cfg.AskBurst)
	askLimiter.OnLimited(appMetrics.ObserveRateLimited)
	defer askLimiter.Stop()

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(pool)
	authHandler := handler.NewAuthHandler(authService)
	transactionHandler := handler.NewTransactionHandler(transactionService, loc)
	askHandler := handler.NewAskHandler(askService, appMetrics)
	summaryHandler := handler.NewSummaryHandler(summaryService, appMetrics)
	wsHandler := handler.NewWebSocketHandler(hub, tokenService, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders: []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging and metrics
	e.Use(middleware.RequestLogger(appMetrics))

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Prometheus scrape endpoint
	e.GET("/metrics", echo.WrapHandler(appMetrics.Handler()))

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, askLimiter, healthHandler, authHandler, transactionHandler, askHandler, summaryHandler, wsHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
