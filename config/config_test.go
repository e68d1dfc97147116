package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "HTTP_PORT", "DB_DRIVER", "SESSION_TTL", "CORS_ORIGINS", "COOKIE_SECURE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, 587, cfg.SMTP.Port)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ORIGINS", "https://shop.example, ,https://admin.example")
	t.Setenv("ADMIN_API_KEY", "secret")

	cfg := Load()
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, []string{"https://shop.example", "https://admin.example"}, cfg.CORSOrigins)
	assert.Equal(t, "secret", cfg.AdminAPIKey)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("SESSION_TTL", "-5m")
	t.Setenv("COOKIE_SECURE", "maybe")

	cfg := Load()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 72*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.CookieSecure)
}
