package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Catalog source kinds
const (
	SourceFixture  = "fixture"
	SourcePostgres = "postgres"
	SourceRemote   = "remote"
)

// DefaultSessionSecret is only acceptable outside production
const DefaultSessionSecret = "dev-secret"

var ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a non-default value in production")

type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	Checkout CheckoutConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	MetricsEnabled bool
}

type CatalogConfig struct {
	Source        string
	FixturePath   string
	RemoteURL     string
	RemoteTimeout time.Duration
	CacheTTL      time.Duration
	FallbackMin   float64
	FallbackMax   float64
	Seed          bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host is configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Addr is host:port
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type SessionConfig struct {
	Secret   string
	TTL      time.Duration
	MaxCarts int
}

type CheckoutConfig struct {
	RateLimit      int
	RateWindow     time.Duration
	ProcessingTime time.Duration
}

func Load() *Config {
	// .env values reach the process environment before viper reads it
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: no .env file loaded: %v", err)
	}

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("CATALOG_SOURCE", SourceFixture)
	viper.SetDefault("CATALOG_FIXTURE_PATH", "")
	viper.SetDefault("CATALOG_REMOTE_URL", "http://localhost:8082")
	viper.SetDefault("CATALOG_REMOTE_TIMEOUT_MS", 3000)
	viper.SetDefault("CATALOG_CACHE_TTL_SECONDS", 0)
	viper.SetDefault("CATALOG_FALLBACK_MIN", 0)
	viper.SetDefault("CATALOG_FALLBACK_MAX", 100)
	viper.SetDefault("CATALOG_SEED", false)
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_DATABASE", "bloom")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("REDIS_HOST", "")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SESSION_SECRET", DefaultSessionSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 72)
	viper.SetDefault("SESSION_MAX_CARTS", 10000)
	viper.SetDefault("CHECKOUT_RATE_LIMIT", 5)
	viper.SetDefault("CHECKOUT_RATE_WINDOW_SECONDS", 60)
	viper.SetDefault("CHECKOUT_PROCESSING_MS", 2000)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			MetricsEnabled: viper.GetBool("METRICS_ENABLED"),
		},
		Catalog: CatalogConfig{
			Source:        strings.ToLower(viper.GetString("CATALOG_SOURCE")),
			FixturePath:   viper.GetString("CATALOG_FIXTURE_PATH"),
			RemoteURL:     viper.GetString("CATALOG_REMOTE_URL"),
			RemoteTimeout: time.Duration(viper.GetInt("CATALOG_REMOTE_TIMEOUT_MS")) * time.Millisecond,
			CacheTTL:      time.Duration(viper.GetInt("CATALOG_CACHE_TTL_SECONDS")) * time.Second,
			FallbackMin:   viper.GetFloat64("CATALOG_FALLBACK_MIN"),
			FallbackMax:   viper.GetFloat64("CATALOG_FALLBACK_MAX"),
			Seed:          viper.GetBool("CATALOG_SEED"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Database: viper.GetString("DB_DATABASE"),
			Schema:   viper.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Session: SessionConfig{
			Secret:   viper.GetString("SESSION_SECRET"),
			TTL:      time.Duration(viper.GetInt("SESSION_TTL_HOURS")) * time.Hour,
			MaxCarts: viper.GetInt("SESSION_MAX_CARTS"),
		},
		Checkout: CheckoutConfig{
			RateLimit:      viper.GetInt("CHECKOUT_RATE_LIMIT"),
			RateWindow:     time.Duration(viper.GetInt("CHECKOUT_RATE_WINDOW_SECONDS")) * time.Second,
			ProcessingTime: time.Duration(viper.GetInt("CHECKOUT_PROCESSING_MS")) * time.Millisecond,
		},
	}
}

// Validate rejects settings the server must not start with
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return ErrInsecureSessionSecret
	}
	if c.Server.Env == "production" && c.Session.Secret == DefaultSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
