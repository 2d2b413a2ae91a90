// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values. A local '.env' file
is honoured through 'joho/godotenv' when present.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (server, stores, limiters) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/zlovtnik/iead-sub004/internal/wire"
)

// Storage backends understood by SESSION_BACKEND and RATE_LIMIT_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// # Configuration Schema

// Config holds all runtime configuration for the API server.
type Config struct {

	// Server settings
	ServerHost        string        `env:"SERVER_HOST"        envDefault:"0.0.0.0"`
	ServerPort        string        `env:"SERVER_PORT"        envDefault:"8080"`
	Environment       string        `env:"ENVIRONMENT"        envDefault:"development"`
	Debug             bool          `env:"DEBUG"              envDefault:"false"`
	ConnectionTimeout time.Duration `env:"CONNECTION_TIMEOUT" envDefault:"60s"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES"     envDefault:"1048576"`

	// TrustedProxies lists CIDR blocks or addresses allowed to set X-Forwarded-For.
	// Empty means the TCP peer is always the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	// Sessions
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"8h"`
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`

	// Rate limiting
	RateLimitBackend string        `env:"RATE_LIMIT_BACKEND" envDefault:"memory"`
	LoginMaxAttempts int           `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginWindow      time.Duration `env:"LOGIN_WINDOW"       envDefault:"15m"`
	ClientRPS        float64       `env:"CLIENT_RPS"         envDefault:"50"`
	ClientBurst      int           `env:"CLIENT_BURST"       envDefault:"100"`

	// Relational Database (PostgreSQL). Empty keeps users in memory.
	DatabaseURL string `env:"DATABASE_URL"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL"`

	// Bootstrap administrator, created on startup when missing.
	BootstrapAdminUsername string `env:"BOOTSTRAP_ADMIN_USERNAME" envDefault:"admin"`
	BootstrapAdminEmail    string `env:"BOOTSTRAP_ADMIN_EMAIL"    envDefault:"admin@localhost.localdomain"`
	BootstrapAdminPassword string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

// # Configuration Loading

// Load reads an optional .env file and parses environment variables into a [Config].
func Load() (*Config, error) {

	// A missing .env file is the normal case outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	return Parse()
}

// Parse maps the current environment into a validated [Config].
func Parse() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field has a malformed value.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects inconsistent combinations of settings.
func (c *Config) Validate() error {
	switch c.SessionBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: SESSION_BACKEND=redis requires REDIS_URL")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: SESSION_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	switch c.RateLimitBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("config: RATE_LIMIT_BACKEND=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend)
	}

	if c.SessionTTL <= 0 {
		return errors.New("config: SESSION_TTL must be positive")
	}
	if c.ConnectionTimeout <= 0 {
		return errors.New("config: CONNECTION_TIMEOUT must be positive")
	}
	if c.LoginMaxAttempts <= 0 || c.LoginWindow <= 0 {
		return errors.New("config: LOGIN_MAX_ATTEMPTS and LOGIN_WINDOW must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("config: MAX_BODY_BYTES must be positive")
	}
	if _, err := wire.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("config: TRUSTED_PROXIES: %w", err)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// UsesPostgres reports whether any component needs the PostgreSQL pool.
func (c *Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// UsesRedis reports whether any component needs the Redis client.
func (c *Config) UsesRedis() bool {
	return c.SessionBackend == BackendRedis || c.RateLimitBackend == BackendRedis
}
