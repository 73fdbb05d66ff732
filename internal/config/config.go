// Package config loads armonia's settings from an optional YAML file and
// ARMONIA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config holds the complete server configuration.
type Config struct {
	HTTP     HTTPConfig   `koanf:"http"`
	Log      LogConfig    `koanf:"log"`
	Timezone string       `koanf:"timezone"`
	Store    StoreConfig  `koanf:"store"`
	Gemini   GeminiConfig `koanf:"gemini"`
	Chat     ChatConfig   `koanf:"chat"`
	OIDC     OIDCConfig   `koanf:"oidc"`
	Demo     DemoConfig   `koanf:"demo"`
}

type HTTPConfig struct {
	Addr   string `koanf:"addr"`
	WebDir string `koanf:"web_dir"`
}

type LogConfig struct {
	Mode string `koanf:"mode"`
}

// StoreConfig selects the key-value backend behind every repository.
type StoreConfig struct {
	Driver      string `koanf:"driver"` // memory, postgres or redis
	DatabaseURL string `koanf:"database_url"`
	RedisAddr   string `koanf:"redis_addr"`
	RedisPrefix string `koanf:"redis_prefix"`
}

// GeminiConfig configures the generative chat backend. An empty APIKey
// leaves chat on the built-in keyword replies.
type GeminiConfig struct {
	APIKey   string        `koanf:"api_key"`
	Model    string        `koanf:"model"`
	Endpoint string        `koanf:"endpoint"`
	Timeout  time.Duration `koanf:"timeout"`
}

// ChatConfig bounds how often a single user may reach the generative backend.
type ChatConfig struct {
	RatePerMinute float64 `koanf:"rate_per_minute"`
	Burst         int     `koanf:"burst"`
}

// OIDCConfig enables SSO when Issuer is set.
type OIDCConfig struct {
	Issuer       string `koanf:"issuer"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
	RedirectURL  string `koanf:"redirect_url"`
}

type DemoConfig struct {
	Seed bool `koanf:"seed"`
}

// OIDCEnabled reports whether SSO should be configured.
func (c *Config) OIDCEnabled() bool {
	return c.OIDC.Issuer != ""
}

// Location resolves Timezone, defaulting to the process local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func applyDefaults(cfg *Config) {
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.WebDir == "" {
		cfg.HTTP.WebDir = "web"
	}
	if cfg.Log.Mode == "" {
		cfg.Log.Mode = "dev"
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "memory"
	}
	if cfg.Store.RedisPrefix == "" {
		cfg.Store.RedisPrefix = "armonia:"
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-1.5-flash"
	}
	if cfg.Gemini.Endpoint == "" {
		cfg.Gemini.Endpoint = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Gemini.Timeout == 0 {
		cfg.Gemini.Timeout = 15 * time.Second
	}
	if cfg.Chat.RatePerMinute == 0 {
		cfg.Chat.RatePerMinute = 6
	}
	if cfg.Chat.Burst == 0 {
		cfg.Chat.Burst = 3
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("store.database_url is required for the postgres driver"))
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if c.Gemini.Timeout < 0 {
		errs = append(errs, errors.New("gemini.timeout must not be negative"))
	}
	if c.Chat.RatePerMinute < 0 || c.Chat.Burst < 0 {
		errs = append(errs, errors.New("chat rate limits must not be negative"))
	}
	if c.OIDCEnabled() && (c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		errs = append(errs, errors.New("oidc.client_id and oidc.redirect_url are required when oidc.issuer is set"))
	}

	return errors.Join(errs...)
}
