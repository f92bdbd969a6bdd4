package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"KTAX_FORMAT", "KTAX_OUTPUT_DIR", "KTAX_RATES", "KTAX_WORKERS", "KTAX_LOG_LEVEL", "KTAX_NO_ADVICE"} {
		t.Setenv(key, "")
	}

	cfg := Load(writeFile(t, "none.env", ""))

	assert.Equal(t, "console", cfg.Format)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.NoAdvice)
	assert.Empty(t, cfg.RatesFile)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("KTAX_FORMAT", "json")
	t.Setenv("KTAX_WORKERS", "8")
	t.Setenv("KTAX_NO_ADVICE", "true")
	t.Setenv("KTAX_LOG_LEVEL", "")

	cfg := Load(writeFile(t, "none.env", ""))

	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.NoAdvice)
}

func TestLoad_EnvFile(t *testing.T) {
	// godotenv only fills variables that are absent from the environment
	t.Setenv("KTAX_LOG_LEVEL", "")
	os.Unsetenv("KTAX_LOG_LEVEL")
	t.Setenv("KTAX_WORKERS", "2")
	envFile := writeFile(t, "ktax.env", "KTAX_LOG_LEVEL=debug\nKTAX_WORKERS=16\n")

	cfg := Load(envFile)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.Workers, "existing variables win over the env file")
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("KTAX_WORKERS", "many")
	t.Setenv("KTAX_NO_ADVICE", "sometimes")

	cfg := Load(writeFile(t, "none.env", ""))

	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.NoAdvice)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		errorString string
	}{
		{"valid", Config{Format: "console", Workers: 4, LogLevel: "info"}, ""},
		{"upper case level", Config{Format: "console", Workers: 1, LogLevel: "DEBUG"}, ""},
		{"zero workers", Config{Format: "console", Workers: 0, LogLevel: "info"}, "invalid worker count 0"},
		{"too many workers", Config{Format: "console", Workers: 65, LogLevel: "info"}, "must be between 1 and 64"},
		{"bad level", Config{Format: "console", Workers: 4, LogLevel: "trace"}, "invalid log level 'trace'"},
		{"empty format", Config{Workers: 4, LogLevel: "info"}, "output format cannot be empty"},
		{"missing rates", Config{Format: "console", Workers: 4, LogLevel: "info", RatesFile: "/nonexistent/rates.yaml"}, "rate table file is not readable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.errorString == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.errorString)
			}
		})
	}
}
