package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL      string
	DatabaseMaxConns int
	AutoMigrate      bool

	// Auth
	JWT JWTConfig

	// Server
	Port        string
	CORSOrigins []string
	Env         string

	// Reports
	ReportTimezone string
	CurrencySymbol string

	// Assistant
	OpenAI OpenAIConfig

	// Ask rate limiting, per owner
	AskRateLimit int
	AskBurst     int

	// S3 Storage
	S3 S3Config
}

// JWTConfig holds token signing configuration
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// OpenAIConfig holds the language-model configuration. An empty APIKey
// disables the assistant.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	BaseURL    string // Optional: for OpenAI-compatible gateways
	Timeout    time.Duration
	MaxRetries int
}

// S3Config holds AWS S3 configuration. An empty Bucket disables summary export.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
	ExportTTL       time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		DatabaseMaxConns: getInt("DATABASE_MAX_CONNS", 0),
		AutoMigrate:      getEnv("AUTO_MIGRATE", "true") == "true",
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", ""),
			Issuer:   getEnv("JWT_ISSUER", "finos-server"),
			Audience: getEnv("JWT_AUDIENCE", "finos-client"),
			TTL:      getDuration("JWT_TTL", 7*24*time.Hour),
		},
		Port:           getEnv("PORT", "5000"),
		CORSOrigins:    strings.Split(getEnv("CORS_ORIGINS", "*"), ","),
		Env:            getEnv("ENV", "development"),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "UTC"),
		CurrencySymbol: getEnv("CURRENCY_SYMBOL", "₹"),
		OpenAI: OpenAIConfig{
			APIKey:     getEnv("OPENAI_API_KEY", ""),
			Model:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL:    getEnv("OPENAI_BASE_URL", ""),
			Timeout:    getDuration("OPENAI_TIMEOUT", 30*time.Second),
			MaxRetries: getInt("OPENAI_MAX_RETRIES", 1),
		},
		AskRateLimit: getInt("ASK_RATE_LIMIT", 20),
		AskBurst:     getInt("ASK_BURST", 5),
		S3: S3Config{
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
			ExportTTL:       getDuration("S3_EXPORT_TTL", 15*time.Minute),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location returns the time zone reports are grouped in
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.ReportTimezone)
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE is invalid: %w", err)
	}
	if c.OpenAI.MaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must not be negative")
	}
	if c.AskRateLimit <= 0 || c.AskBurst <= 0 {
		return fmt.Errorf("ASK_RATE_LIMIT and ASK_BURST must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
