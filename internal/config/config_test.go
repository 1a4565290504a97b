package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/msomdec/book-catalog/internal/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, ":8080", cfg.HTTP.Addr())
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "book-catalog.db", cfg.Database.Path)
	assert.Equal(t, 1, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Seed.Enabled)
	assert.Equal(t, 12, cfg.Seed.BcryptCost)
	assert.Equal(t, []string{"RS256"}, cfg.Auth.Algorithms)
	assert.Equal(t, "create:books", cfg.Auth.ScopeCreate)
	assert.Equal(t, "update:books", cfg.Auth.ScopeUpdate)
	assert.Equal(t, "delete:books", cfg.Auth.ScopeDelete)
	assert.Equal(t, "read:users", cfg.Auth.ScopeReadUsers)
	assert.Empty(t, cfg.Auth.JWKSURL)
	assert.False(t, cfg.API.StrictStatus)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 5.0, cfg.RateLimit.WriteRPS)
	assert.Equal(t, 10, cfg.RateLimit.WriteBurst)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "catalog", cfg.RabbitMQ.Exchange)
	assert.Equal(t, slog.LevelInfo, cfg.Log.LogLevel())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("SHUTDOWN_TIMEOUT", "10s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DRIVER", "sqlite3")
	t.Setenv("API_STRICT_STATUS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("AUTH_ALGORITHMS", "RS256,ES256")
	t.Setenv("RATE_LIMIT_WRITE_RPS", "0.5")

	cfg := config.NewConfig()

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTP.Addr())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.Log.LogLevel())
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.True(t, cfg.API.StrictStatus)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"RS256", "ES256"}, cfg.Auth.Algorithms)
	assert.Equal(t, 0.5, cfg.RateLimit.WriteRPS)
}

func TestNewConfig_JWKSURLFromIssuer(t *testing.T) {
	t.Setenv("AUTH_ISSUER", "https://tenant.auth0.com/")

	cfg := config.NewConfig()
	assert.Equal(t, "https://tenant.auth0.com/.well-known/jwks.json", cfg.Auth.JWKSURL)

	t.Setenv("AUTH_JWKS_URL", "https://keys.example.com/jwks")
	cfg = config.NewConfig()
	assert.Equal(t, "https://keys.example.com/jwks", cfg.Auth.JWKSURL)
}

func TestLogLevel_UnknownFallsBackToInfo(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, config.Log{Level: "loud"}.LogLevel())
}
