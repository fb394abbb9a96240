// Package config loads server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Compliance ComplianceConfig
}

// AppConfig holds HTTP server configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
	StaticDir      string
}

type DatabaseConfig struct {
	// Path is the SQLite file, or ":memory:".
	Path string
}

type ComplianceConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads the given .env files (default ".env") if present, then the
// WORKLOG_* environment variables.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("WORKLOG_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKLOG_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("WORKLOG_ENV", "development"),
		LogLevel:       getEnv("WORKLOG_LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("WORKLOG_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080"),
		StaticDir:      getEnv("WORKLOG_STATIC_DIR", "./web/dist"),
	}

	config.Database = DatabaseConfig{
		Path: getEnv("WORKLOG_DB", "worklog.db"),
	}

	interval, err := time.ParseDuration(getEnv("WORKLOG_CHECK_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKLOG_CHECK_INTERVAL: %w", err)
	}
	enabled, err := strconv.ParseBool(getEnv("WORKLOG_CHECK_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid WORKLOG_CHECK_ENABLED: %w", err)
	}
	config.Compliance = ComplianceConfig{Enabled: enabled, Interval: interval}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port < 1 || c.App.Port > 65535 {
		return fmt.Errorf("WORKLOG_PORT out of range: %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return errors.New("WORKLOG_DB is required")
	}
	if c.Compliance.Interval <= 0 {
		return errors.New("WORKLOG_CHECK_INTERVAL must be positive")
	}
	if _, err := ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	return nil
}

// IsDevelopment reports whether dev-only routes may be mounted.
func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key, fallback string) []string {
	value := getEnv(key, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
