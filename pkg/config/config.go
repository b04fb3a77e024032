// Package config loads the runtime configuration from CHARACTERS_*
// environment variables. Command line flags override the loaded values.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/character-browser/pkg/client"
	"github.com/Sternrassler/character-browser/pkg/logging"
	"github.com/caarlos0/env/v11"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Config is the full runtime configuration.
type Config struct {
	APIBaseURL string        `env:"CHARACTERS_API_URL" envDefault:"https://rickandmortyapi.com/api"`
	UserAgent  string        `env:"CHARACTERS_USER_AGENT" envDefault:"character-browser/1.0"`
	Timeout    time.Duration `env:"CHARACTERS_TIMEOUT" envDefault:"30s"`

	Store      string `env:"CHARACTERS_STORE" envDefault:"sqlite"`
	SQLitePath string `env:"CHARACTERS_SQLITE_PATH" envDefault:"character-browser.db"`
	RedisAddr  string `env:"CHARACTERS_REDIS_ADDR"`
	RedisDB    int    `env:"CHARACTERS_REDIS_DB" envDefault:"0"`

	Locale      string `env:"CHARACTERS_LOCALE" envDefault:"en-US"`
	LogLevel    string `env:"CHARACTERS_LOG_LEVEL" envDefault:"info"`
	LogPretty   bool   `env:"CHARACTERS_LOG_PRETTY"`
	MetricsAddr string `env:"CHARACTERS_METRICS_ADDR"`
	HTML        bool   `env:"CHARACTERS_HTML"`

	PrefetchWorkers int `env:"CHARACTERS_PREFETCH_WORKERS" envDefault:"4"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("api url must be an absolute http(s) url (got %q)", c.APIBaseURL)
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		return fmt.Errorf("user agent is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive (got %s)", c.Timeout)
	}

	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("sqlite store needs a path")
		}
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis store needs an address")
		}
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreMemory, StoreRedis, StoreSQLite)
	}

	if c.RedisDB < 0 {
		return fmt.Errorf("redis db must be >= 0 (got %d)", c.RedisDB)
	}
	if c.PrefetchWorkers < 1 {
		return fmt.Errorf("prefetch workers must be >= 1 (got %d)", c.PrefetchWorkers)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ClientConfig derives the API client configuration. Redis is attached by
// the caller.
func (c Config) ClientConfig() client.Config {
	cc := client.DefaultConfig(nil, c.UserAgent)
	cc.BaseURL = c.APIBaseURL
	cc.Timeout = c.Timeout
	return cc
}

// LoggingConfig derives the logger configuration.
func (c Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.LogLevel
	lc.Pretty = c.LogPretty
	return lc
}
