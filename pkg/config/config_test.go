package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://rickandmortyapi.com/api", cfg.APIBaseURL)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, 4, cfg.PrefetchWorkers)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("CHARACTERS_API_URL", "http://localhost:8080/api")
	t.Setenv("CHARACTERS_STORE", "redis")
	t.Setenv("CHARACTERS_REDIS_ADDR", "localhost:6379")
	t.Setenv("CHARACTERS_REDIS_DB", "3")
	t.Setenv("CHARACTERS_LOCALE", "ru-RU")
	t.Setenv("CHARACTERS_TIMEOUT", "5s")
	t.Setenv("CHARACTERS_LOG_PRETTY", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/api", cfg.APIBaseURL)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, "ru-RU", cfg.Locale)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.LogPretty)
	require.NoError(t, cfg.Validate())

	cc := cfg.ClientConfig()
	assert.Equal(t, "http://localhost:8080/api", cc.BaseURL)
	assert.Equal(t, 5*time.Second, cc.Timeout)
	assert.True(t, cfg.LoggingConfig().Pretty)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("CHARACTERS_REDIS_DB", "many")

	_, err := Load()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse env:"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "relative api url", mutate: func(c *Config) { c.APIBaseURL = "api" }},
		{name: "empty user agent", mutate: func(c *Config) { c.UserAgent = " " }},
		{name: "zero timeout", mutate: func(c *Config) { c.Timeout = 0 }},
		{name: "unknown store", mutate: func(c *Config) { c.Store = "etcd" }},
		{name: "redis without address", mutate: func(c *Config) { c.Store = StoreRedis }},
		{name: "sqlite without path", mutate: func(c *Config) { c.SQLitePath = "" }},
		{name: "no prefetch workers", mutate: func(c *Config) { c.PrefetchWorkers = 0 }},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
