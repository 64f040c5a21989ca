package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"news-reader/internal/kv"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// KeyEnvNames lists the environment variables holding the upstream API key,
// in precedence order.
var KeyEnvNames = []string{"NEWS_API_KEY", "REACT_APP_NEWS_API_KEY"}

type Store struct {
	Driver    string `yaml:"driver"`
	Path      string `yaml:"path"`
	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`
}

type Config struct {
	ListenAddr      string   `yaml:"listen_addr"`
	UpstreamBaseURL string   `yaml:"upstream_base_url"`
	ProxyURL        string   `yaml:"proxy_url"`
	AllowedParams   []string `yaml:"allowed_params"`
	PageSize        int      `yaml:"page_size"`
	ToastDuration   string   `yaml:"toast_duration"`
	Store           Store    `yaml:"store"`

	// lookup is os.LookupEnv unless overridden in tests
	lookup func(string) (string, bool)
}

// APIKey returns the first non-empty credential from KeyEnvNames, as set.
func (c *Config) APIKey() string {
	lookup := c.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, name := range KeyEnvNames {
		if v, ok := lookup(name); ok && v != "" {
			return v
		}
	}
	return ""
}

// KeyHint describes where the credential is read from. It names the
// variables only.
func (c *Config) KeyHint() string {
	return "set one of " + strings.Join(KeyEnvNames, " or ") + " in the environment or a .env file"
}

// SetLookup replaces the environment lookup used by APIKey.
func (c *Config) SetLookup(fn func(string) (string, bool)) {
	c.lookup = fn
}

// Proxied reports whether the client should go through the proxy.
func (c *Config) Proxied() bool {
	return c.ProxyURL != ""
}

// ToastDurationValue returns the parsed toast duration, defaulting to 1.8s.
func (c *Config) ToastDurationValue() time.Duration {
	d, err := time.ParseDuration(c.ToastDuration)
	if err != nil || d <= 0 {
		return 1800 * time.Millisecond
	}
	return d
}

// GetPageSize returns the home page size, defaulting to 10.
func (c *Config) GetPageSize() int {
	if c.PageSize <= 0 {
		return 10
	}
	return c.PageSize
}

// StoreOptions resolves the KV options, filling in the default data path.
func (c *Config) StoreOptions() kv.Options {
	path := c.Store.Path
	if path == "" {
		path = DataPath()
	}
	return kv.Options{
		Driver:    c.Store.Driver,
		Path:      path,
		RedisAddr: c.Store.RedisAddr,
		RedisDB:   c.Store.RedisDB,
	}
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "news-reader", "config.yaml")
}

func DataPath() string {
	return filepath.Join(xdg.DataHome, "news-reader", "reader.db")
}

func LogPath() string {
	return filepath.Join(xdg.StateHome, "news-reader", "news-reader.log")
}

// LoadEnv reads .env from the working directory when present.
func LoadEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

// Defaults returns the embedded configuration.
func Defaults() *Config {
	cfg, err := loadDefaults()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the config at path (or the default path), overlaying it on the
// embedded defaults. A missing file is written out with the defaults.
func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// non-fatal: the embedded defaults still apply
			_ = writeDefaults(path)
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := *defaults
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if err := checkHTTPURL("upstream_base_url", cfg.UpstreamBaseURL, false); err != nil {
		return err
	}
	if err := checkHTTPURL("proxy_url", cfg.ProxyURL, true); err != nil {
		return err
	}
	switch cfg.Store.Driver {
	case "", kv.DriverSQLite, kv.DriverMemory:
	case kv.DriverRedis:
		if cfg.Store.RedisAddr == "" {
			return fmt.Errorf("store: redis_addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("store: unknown driver %q (valid: sqlite, redis, memory)", cfg.Store.Driver)
	}
	return nil
}

func checkHTTPURL(field, raw string, optional bool) error {
	if raw == "" {
		if optional {
			return nil
		}
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid url: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: url scheme must be http or https, got %q", field, u.Scheme)
	}
	return nil
}
