package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Empty(t, cfg.Server.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, SourceFixture, cfg.Catalog.Source)
	assert.Equal(t, 3*time.Second, cfg.Catalog.RemoteTimeout)
	assert.Equal(t, time.Duration(0), cfg.Catalog.CacheTTL)
	assert.Equal(t, 100.0, cfg.Catalog.FallbackMax)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 72*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 2*time.Second, cfg.Checkout.ProcessingTime)
	assert.Equal(t, time.Minute, cfg.Checkout.RateWindow)
}

func TestLoadFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CATALOG_SOURCE", "Remote")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://bloom.example, https://admin.bloom.example ,")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("CATALOG_CACHE_TTL_SECONDS", "30")
	t.Setenv("CHECKOUT_PROCESSING_MS", "0")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Load()

	assert.Equal(t, SourceRemote, cfg.Catalog.Source)
	assert.Equal(t, []string{"https://bloom.example", "https://admin.bloom.example"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Second, cfg.Catalog.CacheTTL)
	assert.Equal(t, time.Duration(0), cfg.Checkout.ProcessingTime)
	assert.Equal(t, "warn", cfg.Server.LogLevel)
}

func TestValidateSessionSecret(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Env: "production"},
		Session: SessionConfig{Secret: DefaultSessionSecret},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureSessionSecret)

	cfg.Session.Secret = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInsecureSessionSecret)

	cfg.Session.Secret = "a-long-random-production-secret"
	assert.NoError(t, cfg.Validate())

	cfg.Server.Env = "development"
	cfg.Session.Secret = DefaultSessionSecret
	assert.NoError(t, cfg.Validate())
}

func TestLoadedProductionConfigNeedsSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("SERVER_ENV", "production")

	assert.ErrorIs(t, Load().Validate(), ErrInsecureSessionSecret)

	viper.Reset()
	t.Setenv("SESSION_SECRET", "rotated-secret")
	assert.NoError(t, Load().Validate())
}
