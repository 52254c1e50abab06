package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	GoEnv string

	// HTTP
	HTTPPort int

	// Database
	DatabasePath string

	// Sessions
	SessionSecret string
	SessionMaxAge time.Duration

	// Content roots
	MediaDir     string
	StaticDir    string
	TemplateGlob string

	// Uploads
	UploadMaxBytes int64

	// Credential-route throttling
	LoginRateLimit float64
	LoginRateBurst int

	// Logging
	LogLevel string
}

// LoadConfig loads configuration from environment variables, with .env as an
// optional overlay for development.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		// Missing .env is fine; system env vars still apply.
		fmt.Printf("Warning: .env file not found: %v\n", err)
	}

	cfg := &Config{}

	if err := loadEnvString(&cfg.GoEnv, "GO_ENV", "development"); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.HTTPPort, "HTTP_PORT", 8080); err != nil {
		return nil, err
	}
	if err := loadEnvString(&cfg.DatabasePath, "DATABASE_PATH", "cookshare.db"); err != nil {
		return nil, err
	}
	if err := loadEnvStringRequired(&cfg.SessionSecret, "SESSION_SECRET"); err != nil {
		return nil, err
	}
	if err := loadEnvDuration(&cfg.SessionMaxAge, "SESSION_MAX_AGE", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if err := loadEnvString(&cfg.MediaDir, "MEDIA_DIR", "web/media"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&cfg.StaticDir, "STATIC_DIR", "web/static"); err != nil {
		return nil, err
	}
	if err := loadEnvString(&cfg.TemplateGlob, "TEMPLATE_GLOB", "web/templates/*.html"); err != nil {
		return nil, err
	}
	if err := loadEnvInt64(&cfg.UploadMaxBytes, "UPLOAD_MAX_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if err := loadEnvFloat(&cfg.LoginRateLimit, "LOGIN_RATE_LIMIT", 1); err != nil {
		return nil, err
	}
	if err := loadEnvInt(&cfg.LoginRateBurst, "LOGIN_RATE_BURST", 5); err != nil {
		return nil, err
	}
	if err := loadEnvString(&cfg.LogLevel, "LOG_LEVEL", "info"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnvString(target *string, key, defaultValue string) error {
	if value := os.Getenv(key); value != "" {
		*target = value
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvStringRequired(target *string, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return fmt.Errorf("required environment variable %s is not set", key)
	}
	*target = value
	return nil
}

func loadEnvInt(target *int, key string, defaultValue int) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvInt64(target *int64, key string, defaultValue int64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvFloat(target *float64, key string, defaultValue float64) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

func loadEnvDuration(target *time.Duration, key string, defaultValue time.Duration) error {
	if value := os.Getenv(key); value != "" {
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %v", key, err)
		}
		*target = parsed
	} else {
		*target = defaultValue
	}
	return nil
}

// Validate performs validation on the loaded configuration.
func (c *Config) Validate() error {
	var errors []string

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errors = append(errors, "HTTP_PORT must be between 1 and 65535")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: %s", strings.Join(validLogLevels, ", ")))
	}

	if len(c.SessionSecret) < 32 {
		errors = append(errors, "SESSION_SECRET should be at least 32 characters long")
	}

	if c.UploadMaxBytes < 1 {
		errors = append(errors, "UPLOAD_MAX_BYTES must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errors, "; "))
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
