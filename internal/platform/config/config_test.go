// Copyright (c) 2026 zlovtnik. All rights reserved.
// Author: zlovtnik

package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zlovtnik/iead-sub004/internal/platform/config"
)

/*
TestParse_Defaults checks the defaults of an empty environment.
*/
func TestParse_Defaults(t *testing.T) {
	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 60*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL)
	assert.Equal(t, config.BackendMemory, cfg.SessionBackend)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.LoginWindow)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.False(t, cfg.UsesPostgres())
	assert.False(t, cfg.UsesRedis())
}

/*
TestParse_Overrides checks that environment values win over defaults.
*/
func TestParse_Overrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.168.1.10")

	cfg, err := config.Parse()
	require.NoError(t, err)

	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.10"}, cfg.TrustedProxies)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 3, cfg.LoginMaxAttempts)
	assert.True(t, cfg.UsesRedis())
}

/*
TestParse_Invalid rejects inconsistent settings.
*/
func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"redis_without_url", map[string]string{"SESSION_BACKEND": "redis"}},
		{"postgres_without_dsn", map[string]string{"SESSION_BACKEND": "postgres"}},
		{"unknown_backend", map[string]string{"RATE_LIMIT_BACKEND": "memcached"}},
		{"zero_ttl", map[string]string{"SESSION_TTL": "0s"}},
		{"bad_duration", map[string]string{"LOGIN_WINDOW": "soon"}},
		{"bad_trusted_proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,proxy.local"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			_, err := config.Parse()
			assert.Error(t, err)
		})
	}
}
