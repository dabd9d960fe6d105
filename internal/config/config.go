// Package config centralises configuration parsing for the sleeve selector.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration values for the sleeve selector.
type Config struct {
	HTTPAddress         string
	ReferencePath       string // Empty uses the embedded reference tables.
	CatalogPath         string // Empty uses the embedded catalog.
	CatalogPostgresURL  string // Takes precedence over CatalogPath when set.
	KafkaBrokers        []string
	EventsTopic         string // Empty disables event publication.
	EventPublishTimeout time.Duration
	JWTSecret           string // Empty disables bearer-token auth.
	JWTIssuer           string
	JWTAudience         string
	JWTLeeway           time.Duration
	RateLimitRPS        float64 // Zero disables rate limiting.
	RateLimitBurst      int
	CORSOrigin          string
	LogLevel            string
	LogFormat           string
	ShutdownTimeout     time.Duration
}

// Load reads environment variables into Config, applying sensible defaults for local dev.
func Load() Config {
	cfg := Config{
		HTTPAddress:         getEnv("HTTP_ADDRESS", ":8080"),
		ReferencePath:       getEnv("REFERENCE_PATH", ""),
		CatalogPath:         getEnv("CATALOG_PATH", ""),
		CatalogPostgresURL:  getEnv("CATALOG_POSTGRES_URL", ""),
		EventsTopic:         getEnv("SIZING_EVENTS_TOPIC", ""),
		EventPublishTimeout: getDurationEnv("EVENT_PUBLISH_TIMEOUT", 500*time.Millisecond),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTIssuer:           getEnv("JWT_ISSUER", ""),
		JWTAudience:         getEnv("JWT_AUDIENCE", ""),
		JWTLeeway:           getDurationEnv("JWT_LEEWAY", 30*time.Second),
		RateLimitRPS:        getFloatEnv("RATE_LIMIT_RPS", 20),
		RateLimitBurst:      getIntEnv("RATE_LIMIT_BURST", 40),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		ShutdownTimeout:     getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	cfg.KafkaBrokers = splitAndTrim(getEnv("KAFKA_BROKERS", ""))
	return cfg
}

// EventsEnabled reports whether resolution events should be sent to Kafka.
func (c Config) EventsEnabled() bool {
	return c.EventsTopic != "" && len(c.KafkaBrokers) > 0
}

// AuthEnabled reports whether bearer tokens are required.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
