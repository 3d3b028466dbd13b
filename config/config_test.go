package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadCollectsEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cartones_test")
	t.Setenv("PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGIN", "http://example.test")

	cfg := Load()
	assert.Equal(t, "postgres://localhost/cartones_test", cfg.DatabaseURL)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "http://example.test", cfg.CORSOrigin)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/cartones_test")
	t.Setenv("PORT", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CORS_ORIGIN", "")

	cfg := Load()
	assert.Equal(t, "4000", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "http://localhost:3000", cfg.CORSOrigin)
}
