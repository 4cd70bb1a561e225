// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// JWTSecret signs the inner session token (HS256). Required.
	JWTSecret string `mapstructure:"JWT_SECRET"`
	// TokenEncryptionKey is the 32-byte AES key (hex, base64, or raw) that
	// encrypts the signed token before it leaves the server. Required.
	TokenEncryptionKey string `mapstructure:"TOKEN_ENCRYPTION_KEY"`
	// TokenTTL is the session token lifetime (e.g. "168h" for 7 days).
	TokenTTL string `mapstructure:"TOKEN_TTL"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// BorrowDurationDays is the loan period added to the borrow date.
	BorrowDurationDays int `mapstructure:"BORROW_DURATION_DAYS"`
	// FinePerDay is the fine, in currency units, per day (or part day) overdue.
	FinePerDay int64 `mapstructure:"FINE_PER_DAY"`
	// OTLPEndpoint is the OTLP collector endpoint for traces and metrics.
	// Empty disables telemetry export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
}

// Policy holds the lending policy constants. It is built once from Config and
// injected into the borrowing service and token codec so tests can run with
// alternate values.
type Policy struct {
	BorrowDurationDays int
	FinePerDay         int64
	TokenTTL           time.Duration
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_ENCRYPTION_KEY", "")
	v.SetDefault("TOKEN_TTL", "168h") // 7d
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("BORROW_DURATION_DAYS", 14)
	v.SetDefault("FINE_PER_DAY", 5)
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}

	if cfg.BorrowDurationDays <= 0 {
		return nil, errors.New("config: BORROW_DURATION_DAYS must be positive")
	}
	if cfg.FinePerDay < 0 {
		return nil, errors.New("config: FINE_PER_DAY must not be negative")
	}

	return &cfg, nil
}

// TokenTTLDuration parses TokenTTL as a time.Duration. Returns 168h if unset or invalid.
func (c *Config) TokenTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TokenTTL)
	if err != nil || d <= 0 {
		return 168 * time.Hour
	}
	return d
}

// LendingPolicy returns the policy constants as an immutable value.
func (c *Config) LendingPolicy() Policy {
	return Policy{
		BorrowDurationDays: c.BorrowDurationDays,
		FinePerDay:         c.FinePerDay,
		TokenTTL:           c.TokenTTLDuration(),
	}
}
