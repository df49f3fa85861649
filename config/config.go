// Package config provides application configuration loaded from environment
// variables, with an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the service configuration.
type Config struct {
	Port              string
	DBPath            string
	LogLevel          string
	AutocompleteLimit int // max results returned by the autocomplete endpoint
	FuzzyMaxDistance  int // default edit-distance cutoff for fuzzy search
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first if present; real environment variables
// take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBPath:            getEnv("DB_PATH", "./polls.db"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		AutocompleteLimit: getEnvInt("AUTOCOMPLETE_LIMIT", 10),
		FuzzyMaxDistance:  getEnvInt("FUZZY_MAX_DISTANCE", 3),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.AutocompleteLimit <= 0 {
		return fmt.Errorf("AUTOCOMPLETE_LIMIT must be positive, got %d", c.AutocompleteLimit)
	}
	if c.FuzzyMaxDistance < 0 {
		return fmt.Errorf("FUZZY_MAX_DISTANCE must not be negative, got %d", c.FuzzyMaxDistance)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
