package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HTTP_ADDRESS", "KAFKA_BROKERS", "SIZING_EVENTS_TOPIC", "EVENT_PUBLISH_TIMEOUT",
		"JWT_SECRET", "JWT_ISSUER", "JWT_LEEWAY", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Empty(t, cfg.KafkaBrokers)
	require.False(t, cfg.EventsEnabled())
	require.False(t, cfg.AuthEnabled())
	require.Equal(t, 500*time.Millisecond, cfg.EventPublishTimeout)
	require.Equal(t, 20.0, cfg.RateLimitRPS)
	require.Equal(t, 30*time.Second, cfg.JWTLeeway)
	require.Empty(t, cfg.JWTIssuer)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":9999")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("SIZING_EVENTS_TOPIC", "sizing_events")
	t.Setenv("EVENT_PUBLISH_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_AUDIENCE", "sleeve-selector")
	t.Setenv("JWT_LEEWAY", "5s")

	cfg := Load()
	require.Equal(t, ":9999", cfg.HTTPAddress)
	require.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.EventsEnabled())
	require.True(t, cfg.AuthEnabled())
	require.Equal(t, 2*time.Second, cfg.EventPublishTimeout)
	require.Equal(t, 2.5, cfg.RateLimitRPS)
	require.Equal(t, 40, cfg.RateLimitBurst)
	require.Equal(t, "sleeve-selector", cfg.JWTAudience)
	require.Equal(t, 5*time.Second, cfg.JWTLeeway)
}
