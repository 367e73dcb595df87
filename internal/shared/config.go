package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Remote backend drivers.
const (
	DriverPostgREST = "postgrest"
	DriverSQLite    = "sqlite"
)

// Environment variables that override the remote endpoint and credential.
const (
	EnvRemoteURL       = "COURSECAT_REMOTE_URL"
	EnvRemoteKey       = "COURSECAT_REMOTE_KEY"
	EnvSupabaseURL     = "SUPABASE_URL"
	EnvSupabaseAnonKey = "SUPABASE_ANON_KEY"
)

// Template values shipped in config.example.toml.
var placeholders = []string{
	"https://your-project.supabase.co",
	"your-anon-key",
}

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Remote   RemoteConfig   `toml:"remote"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Loader   LoaderConfig   `toml:"loader"`
	Log      LogConfig      `toml:"log"`
}

// RemoteConfig contains the endpoint and credential of the hosted courses table.
type RemoteConfig struct {
	Driver string `toml:"driver"`
	URL    string `toml:"url"`
	Key    string `toml:"key"`
	Table  string `toml:"table"`
}

// CatalogConfig contains reconciliation timings and the optional sample dataset override.
type CatalogConfig struct {
	ConnectDelayMS int    `toml:"connect_delay_ms"`
	FetchTimeoutMS int    `toml:"fetch_timeout_ms"`
	PushTimeoutMS  int    `toml:"push_timeout_ms"`
	SamplePath     string `toml:"sample_path"`
}

// DatabaseConfig contains database connection settings for the sqlite driver.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoaderConfig contains CSV bulk loader settings.
type LoaderConfig struct {
	Source    string  `toml:"source"`
	BatchSize int     `toml:"batch_size"`
	RateLimit float64 `toml:"rate_limit"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ConnectDelay is the wait between bootstrap and the automatic remote attempt.
func (c CatalogConfig) ConnectDelay() time.Duration {
	return time.Duration(c.ConnectDelayMS) * time.Millisecond
}

// FetchTimeout bounds a single remote read attempt.
func (c CatalogConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// PushTimeout bounds a single remote status write.
func (c CatalogConfig) PushTimeout() time.Duration {
	return time.Duration(c.PushTimeoutMS) * time.Millisecond
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Configured reports whether neither the url nor the key is a placeholder.
//
// The sqlite driver has no credential, so only its url (or the database path) is checked.
func (r RemoteConfig) Configured() bool {
	if r.Driver == DriverSQLite {
		return !IsPlaceholder(r.URL)
	}
	return !IsPlaceholder(r.URL) && !IsPlaceholder(r.Key)
}

// IsPlaceholder reports whether v is empty or an obvious template value.
func IsPlaceholder(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	for _, p := range placeholders {
		if strings.EqualFold(v, p) {
			return true
		}
	}

	lower := strings.ToLower(v)
	lower = strings.TrimPrefix(lower, "https://")
	lower = strings.TrimPrefix(lower, "http://")
	return strings.HasPrefix(lower, "your-") || strings.HasPrefix(lower, "your_") ||
		(strings.HasPrefix(lower, "<") && strings.HasSuffix(lower, ">"))
}

// ApplyEnv overrides remote settings with environment variables when they are set.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := firstNonEmpty(getenv(EnvRemoteURL), getenv(EnvSupabaseURL)); v != "" {
		c.Remote.URL = v
	}
	if v := firstNonEmpty(getenv(EnvRemoteKey), getenv(EnvSupabaseAnonKey)); v != "" {
		c.Remote.Key = v
	}
}

// Validate checks values that would otherwise fail later at runtime.
func (c *Config) Validate() error {
	switch c.Remote.Driver {
	case DriverPostgREST, DriverSQLite:
	default:
		return fmt.Errorf("%w: unknown remote driver %q", ErrInvalidConfig, c.Remote.Driver)
	}
	if c.Remote.Table == "" {
		return fmt.Errorf("%w: remote table is empty", ErrInvalidConfig)
	}
	if c.Catalog.ConnectDelayMS < 0 || c.Catalog.FetchTimeoutMS <= 0 || c.Catalog.PushTimeoutMS <= 0 {
		return fmt.Errorf("%w: catalog timings must be positive", ErrInvalidConfig)
	}
	if c.Loader.BatchSize <= 0 {
		return fmt.Errorf("%w: loader batch_size must be positive", ErrInvalidConfig)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
