package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DATABASE_URL", "CLIENT_URL", "JWT_SECRET", "JWT_EXPIRES_IN_HOURS",
		"BCRYPT_COST", "GEMINI_API_KEY", "GEMINI_MODEL", "REDIS_URL",
		"RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW_MINUTES", "SMTP_HOST", "SMTP_FROM_NAME",
		"DAILY_DIGEST_TIME",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "gemini-1.5-pro", cfg.GeminiModel)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, 15*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "OmniMind", cfg.SMTPFromName)
	assert.Equal(t, "08:00", cfg.DailyDigestTime)
	assert.Empty(t, cfg.SMTPHost)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("JWT_EXPIRES_IN_HOURS", "1")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW_MINUTES", "1")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
	t.Setenv("SMTP_HOST", "smtp.example.com")

	cfg := Load()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, "gemini-1.5-flash", cfg.GeminiModel)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
}

func TestLoadIgnoresUnparsableInts(t *testing.T) {
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("RATE_LIMIT_MAX", "ten")

	cfg := Load()

	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 100, cfg.RateLimitMax)
}
