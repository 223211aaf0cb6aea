// Package config loads the ChoreLedger configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryan-cox/choreledger/internal/store"
)

const (
	// AppName is the application directory name.
	AppName = "choreledger"

	// ConfigFile is the configuration filename.
	ConfigFile = "config.yml"

	defaultStorePath = "chores.yml"
	defaultTokenEnv  = "CHORELEDGER_WEBHOOK_TOKEN"
	defaultRate      = 6
	defaultSchedule  = "0 8 * * *"
)

// Config is the on-disk configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Cache   CacheConfig   `yaml:"cache"`
	Webhook WebhookConfig `yaml:"webhook"`
	Remind  RemindConfig  `yaml:"remind"`
}

type StoreConfig struct {
	Driver      string `yaml:"driver"`
	Path        string `yaml:"path"`
	BusyTimeout string `yaml:"busy_timeout"`
}

type CacheConfig struct {
	TTL string `yaml:"ttl"`
}

type WebhookConfig struct {
	URL           string `yaml:"url"`
	TokenEnv      string `yaml:"token_env"`
	RatePerMinute int    `yaml:"rate_per_minute"`
}

type RemindConfig struct {
	Schedule string `yaml:"schedule"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns the default configuration file path.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName, ConfigFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(AppName, ConfigFile)
	}
	return filepath.Join(home, ".config", AppName, ConfigFile)
}

// Load reads the configuration at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Store.Driver) == "" {
		c.Store.Driver = "yaml"
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		c.Store.Path = defaultStorePath
	}
	if strings.TrimSpace(c.Webhook.TokenEnv) == "" {
		c.Webhook.TokenEnv = defaultTokenEnv
	}
	if c.Webhook.RatePerMinute <= 0 {
		c.Webhook.RatePerMinute = defaultRate
	}
	if strings.TrimSpace(c.Remind.Schedule) == "" {
		c.Remind.Schedule = defaultSchedule
	}
}

// Validate checks fields that cannot be defaulted.
func (c *Config) Validate() error {
	if _, err := ParseDurationOrDefault("cache.ttl", c.Cache.TTL, store.DefaultTTL); err != nil {
		return err
	}
	if _, err := ParseDurationField("store.busy_timeout", c.Store.BusyTimeout); err != nil {
		return err
	}
	return nil
}

// StoreSettings returns the store settings.
func (c *Config) StoreSettings() store.Config {
	busy, _ := ParseDurationField("store.busy_timeout", c.Store.BusyTimeout)
	return store.Config{Driver: c.Store.Driver, Path: c.Store.Path, BusyTimeout: busy}
}

// CacheTTL returns the freshness threshold for fetched tasks.
func (c *Config) CacheTTL() time.Duration {
	ttl, _ := ParseDurationOrDefault("cache.ttl", c.Cache.TTL, store.DefaultTTL)
	return ttl
}

// WebhookToken reads the bearer token from the configured environment variable.
func (c *Config) WebhookToken() string {
	return os.Getenv(c.Webhook.TokenEnv)
}

func ParseDurationField(path, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", path)
	}
	return d, nil
}

func ParseDurationOrDefault(path, raw string, def time.Duration) (time.Duration, error) {
	d, err := ParseDurationField(path, raw)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return def, nil
	}
	return d, nil
}
