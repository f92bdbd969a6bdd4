package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment. Command-line
// flags override every field.
type Config struct {
	// Output
	Format    string
	OutputDir string

	// Rates
	RatesFile string

	// Batch
	Workers int

	// Logging
	LogLevel string

	// Advisory notices
	NoAdvice bool
}

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	maxWorkers     = 64
)

// Load reads KTAX_* variables after loading the given .env files (".env"
// when none are named). Missing env files are not an error.
func Load(envFiles ...string) *Config {
	_ = godotenv.Load(envFiles...)

	return &Config{
		Format:    getEnv("KTAX_FORMAT", "console"),
		OutputDir: getEnv("KTAX_OUTPUT_DIR", ""),
		RatesFile: getEnv("KTAX_RATES", ""),
		Workers:   getEnvInt("KTAX_WORKERS", 4),
		LogLevel:  getEnv("KTAX_LOG_LEVEL", "warn"),
		NoAdvice:  getEnvBool("KTAX_NO_ADVICE", false),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.Workers < 1 || c.Workers > maxWorkers {
		errors = append(errors, fmt.Sprintf("invalid worker count %d: must be between 1 and %d", c.Workers, maxWorkers))
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if c.Format == "" {
		errors = append(errors, "output format cannot be empty")
	}
	if c.RatesFile != "" {
		if _, err := os.Stat(c.RatesFile); err != nil {
			errors = append(errors, fmt.Sprintf("rate table file is not readable: %v", err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
