package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/cesargomez89/yearspin/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port   string
	DBPath string

	StreamingClientID     string
	StreamingClientSecret string
	StreamingURL          string
	StreamingTokenURL     string

	CatalogAPIToken string
	CatalogURL      string
	CatalogSiteURL  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	QueueToken string
	QueueURL   string

	LogLevel  string
	LogFormat string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	return &Config{
		Port:   getEnv("PORT", constants.DefaultPort),
		DBPath: getEnv("DB_PATH", constants.DefaultDBPath),

		StreamingClientID:     getEnv("STREAMING_CLIENT_ID", ""),
		StreamingClientSecret: getEnv("STREAMING_CLIENT_SECRET", ""),
		StreamingURL:          getEnv("STREAMING_URL", constants.DefaultStreamingURL),
		StreamingTokenURL:     getEnv("STREAMING_TOKEN_URL", constants.DefaultStreamingTokenURL),

		CatalogAPIToken: getEnv("CATALOG_API_TOKEN", ""),
		CatalogURL:      getEnv("CATALOG_URL", constants.DefaultCatalogURL),
		CatalogSiteURL:  getEnv("CATALOG_SITE_URL", constants.DefaultCatalogSite),

		RedisAddr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		QueueToken: getEnv("QUEUE_TOKEN", ""),
		QueueURL:   getEnv("QUEUE_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	// Validate Port
	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	// Validate DBPath
	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	// Validate streaming credentials
	if c.StreamingClientID == "" {
		errors = append(errors, "STREAMING_CLIENT_ID cannot be empty")
	}
	if c.StreamingClientSecret == "" {
		errors = append(errors, "STREAMING_CLIENT_SECRET cannot be empty")
	}

	// Validate catalog token
	if c.CatalogAPIToken == "" {
		errors = append(errors, "CATALOG_API_TOKEN cannot be empty")
	}

	// Validate URLs
	for name, val := range map[string]string{
		"STREAMING_URL":       c.StreamingURL,
		"STREAMING_TOKEN_URL": c.StreamingTokenURL,
		"CATALOG_URL":         c.CatalogURL,
		"CATALOG_SITE_URL":    c.CatalogSiteURL,
	} {
		if val == "" {
			errors = append(errors, fmt.Sprintf("%s cannot be empty", name))
			continue
		}
		if _, err := url.Parse(val); err != nil {
			errors = append(errors, fmt.Sprintf("%s is not a valid URL: %s", name, val))
		}
	}

	// Validate redis address
	if c.RedisAddr == "" {
		errors = append(errors, "REDIS_ADDR cannot be empty")
	}

	// Validate queue credentials
	if c.QueueToken == "" {
		errors = append(errors, "QUEUE_TOKEN cannot be empty")
	}
	if c.QueueURL != "" {
		if _, err := url.ParseRequestURI(c.QueueURL); err != nil {
			errors = append(errors, fmt.Sprintf("QUEUE_URL is not a valid URL: %s", c.QueueURL))
		}
	}

	// Validate LogLevel
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	// Validate LogFormat
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
