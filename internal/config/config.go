// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Database
	DatabasePath string // Path to SQLite file holding saved profiles

	// Authentication
	APIKey string // API key for the profile endpoints

	// Derivation defaults
	DefaultTimezone string // IANA zone used when a request omits one

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8080),
		Env:             getEnv("ENV", EnvDevelopment),
		DatabasePath:    getEnv("DATABASE_PATH", "./data/ganzhi.db"),
		APIKey:          getEnv("API_KEY", ""),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "Asia/Shanghai"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH is required"))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	// The default zone must resolve against the runtime's IANA data.
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA zone: %w", c.DefaultTimezone, err))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
