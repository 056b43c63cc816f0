// Package config loads process-wide configuration from the
// environment, optionally overridden by a local .env file, and
// validates the result before the rest of the service starts.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/abw750/ferryAPI3/internal/ferrors"
)

// Config holds everything the dot-state service needs at start-up.
type Config struct {
	Port string `validate:"required"`

	UpstreamBaseURL string `validate:"required,url"`
	UpstreamAPIKey  string `validate:"required"`

	CORSAllowOrigin string `validate:"required"`
}

// Load reads environment variables (after loading a local .env file, if
// present) and validates the result. A failed validation is a fatal
// ferrors.ErrConfiguration.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := &Config{
		Port:            getEnv("PORT", "8082"),
		UpstreamBaseURL: getEnv("WSF_BASE_URL", "https://www.wsdot.wa.gov"),
		UpstreamAPIKey:  getEnv("WSF_API_KEY", ""),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "http://localhost:5173"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w: %v", ferrors.ErrConfiguration, err)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
