// loader.go implements the configuration loading lifecycle for the agent.
//
// The loading sequence is:
//  1. Enforce UTC timezone to prevent drift bugs.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Use envconfig to process struct tags and populate the Config struct.
//  4. Validate the struct using go-playground/validator.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"pushagent/internal/types"
)

// LoadConfig loads and validates the agent configuration from the
// environment. It returns a typed AppError with ErrCodeConfigInvalid on any
// failure so the entrypoint can fail fast with a diagnosable message.
func LoadConfig() (*Config, error) {
	// Enforce UTC so every timestamp the agent emits is unambiguous.
	time.Local = time.UTC

	// godotenv.Load silently succeeds when no .env file exists and never
	// overrides variables already present in the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid,
			"failed to process environment configuration", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, types.NewAppError(types.ErrCodeConfigInvalid,
			"configuration validation failed", err)
	}

	return &cfg, nil
}
