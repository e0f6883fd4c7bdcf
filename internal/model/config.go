package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends understood by store.Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// APIConfig holds settings for the remote notification API.
type APIConfig struct {
	// BaseURL is the root URL of the community API.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds each HTTP request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// Timeout returns TimeoutSec as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// WidgetConfig holds the cache and polling behaviour of the widget.
type WidgetConfig struct {
	Limit           int `mapstructure:"limit" yaml:"limit"`
	CacheTTLSec     int `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// CacheTTL returns CacheTTLSec as a duration.
func (c WidgetConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

// PollInterval returns PollIntervalSec as a duration.
func (c WidgetConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// StoreConfig selects and configures the persistent key-value store.
type StoreConfig struct {
	// Backend is "sqlite" (default) or "redis".
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file. Empty means <data-dir>/widget.db.
	Path string `mapstructure:"path" yaml:"path"`

	RedisAddr   string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisDB     int    `mapstructure:"redis_db" yaml:"redis_db"`
	RedisPrefix string `mapstructure:"redis_prefix" yaml:"redis_prefix"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API    APIConfig    `mapstructure:"api" yaml:"api"`
	Widget WidgetConfig `mapstructure:"widget" yaml:"widget"`
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
}

// DefaultConfigPath returns the default path for the configuration file,
// $XDG_CONFIG_HOME/widgetfeed/config.yaml or ~/.config/widgetfeed/config.yaml.
func DefaultConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "widgetfeed", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "widgetfeed", "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			TimeoutSec: 15,
		},
		Widget: WidgetConfig{
			Limit:           5,
			CacheTTLSec:     300,
			PollIntervalSec: 30,
		},
		Store: StoreConfig{
			Backend:   BackendSQLite,
			RedisAddr: "localhost:6379",
		},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultAppConfig()
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.timeout_sec", def.API.TimeoutSec)
	v.SetDefault("widget.limit", def.Widget.Limit)
	v.SetDefault("widget.cache_ttl_sec", def.Widget.CacheTTLSec)
	v.SetDefault("widget.poll_interval_sec", def.Widget.PollIntervalSec)
	v.SetDefault("store.backend", def.Store.Backend)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("store.redis_addr", def.Store.RedisAddr)
	v.SetDefault("store.redis_db", def.Store.RedisDB)
	v.SetDefault("store.redis_prefix", def.Store.RedisPrefix)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Values may be overridden with WIDGETFEED_* environment variables
// (e.g. WIDGETFEED_API_BASE_URL). A missing file yields the defaults.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("widgetfeed")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values the application cannot use.
// The API base URL is not required here; commands that talk to the remote
// check it with RequireAPI.
func (c *AppConfig) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case BackendSQLite, BackendRedis:
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend))
	}
	if c.Store.Backend == BackendRedis && c.Store.RedisAddr == "" {
		errs = append(errs, errors.New("store.redis_addr: required for redis backend"))
	}
	if c.API.TimeoutSec <= 0 {
		errs = append(errs, errors.New("api.timeout_sec: must be positive"))
	}
	if c.Widget.Limit <= 0 {
		errs = append(errs, errors.New("widget.limit: must be positive"))
	}
	if c.Widget.CacheTTLSec <= 0 {
		errs = append(errs, errors.New("widget.cache_ttl_sec: must be positive"))
	}
	if c.Widget.PollIntervalSec <= 0 {
		errs = append(errs, errors.New("widget.poll_interval_sec: must be positive"))
	}

	return errors.Join(errs...)
}

// RequireAPI reports an error when no API base URL is configured.
func (c *AppConfig) RequireAPI() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is not configured; run 'widgetfeed login' or set WIDGETFEED_API_BASE_URL")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("widget", cfg.Widget)
	v.Set("store", cfg.Store)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
