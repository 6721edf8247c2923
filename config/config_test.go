package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"SERVER_PORT", "APP_ENV", "REDIS_URL", "LOG_LEVEL", "SESSION_MAX_AGE",
		"SESSION_SECURE", "WORKER_CONCURRENCY", "BOOKING_AVAILABILITY_DELAY", "ALLOWED_ORIGINS",
		"TRUSTED_PROXIES",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 2, cfg.Redis.WorkerConcurrency)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Pretty)
	assert.Equal(t, 7*24*60*60, cfg.Session.MaxAge)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, 600*time.Millisecond, cfg.Booking.AvailabilityDelay)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "https://gadgetplan.id, https://www.gadgetplan.id ,")
	t.Setenv("WORKER_CONCURRENCY", "32")
	t.Setenv("SESSION_MAX_AGE", "3600")
	t.Setenv("BOOKING_AVAILABILITY_DELAY", "1s")
	t.Setenv("AUTH_PROVIDER_URL", "https://auth.example.co/")
	t.Setenv("SITE_URL", "https://gadgetplan.id/")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 172.16.0.1")

	cfg := Load()

	assert.True(t, cfg.Server.IsProduction())
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, []string{"https://gadgetplan.id", "https://www.gadgetplan.id"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 8, cfg.Redis.WorkerConcurrency)
	assert.Equal(t, 3600, cfg.Session.MaxAge)
	assert.True(t, cfg.Session.Secure)
	assert.False(t, cfg.Log.Pretty)
	assert.Equal(t, time.Second, cfg.Booking.AvailabilityDelay)
	assert.Equal(t, "https://auth.example.co", cfg.Auth.ProviderURL)
	assert.Equal(t, "https://gadgetplan.id", cfg.Server.SiteURL)
	assert.Equal(t, []string{"10.0.0.0/8", "172.16.0.1"}, cfg.Server.TrustedProxies)
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("SESSION_MAX_AGE", "forever")
	t.Setenv("SESSION_SECURE", "maybe")
	t.Setenv("BOOKING_AVAILABILITY_DELAY", "-5s")
	t.Setenv("APP_ENV", "")

	cfg := Load()

	assert.Equal(t, 7*24*60*60, cfg.Session.MaxAge)
	assert.False(t, cfg.Session.Secure)
	assert.Equal(t, 600*time.Millisecond, cfg.Booking.AvailabilityDelay)
}
