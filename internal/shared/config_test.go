package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Remote.Driver != DriverPostgREST {
			t.Errorf("expected remote driver %s, got %s", DriverPostgREST, config.Remote.Driver)
		}

		if config.Remote.Table != "courses" {
			t.Errorf("expected remote table courses, got %s", config.Remote.Table)
		}

		if config.Catalog.FetchTimeout() != 5*time.Second {
			t.Errorf("expected fetch timeout 5s, got %v", config.Catalog.FetchTimeout())
		}

		if config.Catalog.ConnectDelay() != time.Second {
			t.Errorf("expected connect delay 1s, got %v", config.Catalog.ConnectDelay())
		}

		if config.Loader.BatchSize != 20 {
			t.Errorf("expected loader batch size 20, got %d", config.Loader.BatchSize)
		}

		if config.Server.Addr() != "127.0.0.1:3000" {
			t.Errorf("expected server addr 127.0.0.1:3000, got %s", config.Server.Addr())
		}

		if config.Remote.Configured() {
			t.Error("expected default remote to be unconfigured")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[remote]
driver = "postgrest"
url = "https://abcd.supabase.co"
key = "anon-key-123"

[catalog]
fetch_timeout_ms = 250

[server]
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Remote.URL != "https://abcd.supabase.co" {
			t.Errorf("expected remote url https://abcd.supabase.co, got %s", config.Remote.URL)
		}

		if !config.Remote.Configured() {
			t.Error("expected remote to be configured")
		}

		if config.Catalog.FetchTimeout() != 250*time.Millisecond {
			t.Errorf("expected fetch timeout 250ms, got %v", config.Catalog.FetchTimeout())
		}

		if config.Catalog.PushTimeoutMS != 5000 {
			t.Errorf("expected push timeout to keep default 5000, got %d", config.Catalog.PushTimeoutMS)
		}

		if config.Remote.Table != "courses" {
			t.Errorf("expected table to keep default, got %s", config.Remote.Table)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		env := map[string]string{
			EnvSupabaseURL: "https://fallback.supabase.co",
			EnvRemoteKey:   "real-key",
		}
		config := DefaultConfig()
		config.ApplyEnv(func(k string) string { return env[k] })

		if config.Remote.URL != "https://fallback.supabase.co" {
			t.Errorf("expected url from SUPABASE_URL, got %s", config.Remote.URL)
		}
		if config.Remote.Key != "real-key" {
			t.Errorf("expected key from COURSECAT_REMOTE_KEY, got %s", config.Remote.Key)
		}
		if !config.Remote.Configured() {
			t.Error("expected remote to be configured after env overrides")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Remote.Driver = "mongo"
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for unknown driver, got %v", err)
		}

		config = DefaultConfig()
		config.Catalog.FetchTimeoutMS = 0
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig for zero timeout, got %v", err)
		}
	})
}

func TestIsPlaceholder(t *testing.T) {
	tc := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "empty", value: "", want: true},
		{name: "whitespace", value: "   ", want: true},
		{name: "template url", value: "https://your-project.supabase.co", want: true},
		{name: "template key", value: "your-anon-key", want: true},
		{name: "underscore template", value: "your_service_key", want: true},
		{name: "angle brackets", value: "<SUPABASE_URL>", want: true},
		{name: "real url", value: "https://xyzcompany.supabase.co", want: false},
		{name: "real key", value: "eyJhbGciOiJIUzI1NiJ9.payload", want: false},
		{name: "sqlite path", value: "./coursecat.db", want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPlaceholder(tt.value); got != tt.want {
				t.Errorf("IsPlaceholder(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestRemoteConfigured(t *testing.T) {
	t.Run("postgrest needs url and key", func(t *testing.T) {
		r := RemoteConfig{Driver: DriverPostgREST, URL: "https://real.supabase.co", Key: "your-anon-key"}
		if r.Configured() {
			t.Error("expected placeholder key to leave remote unconfigured")
		}
	})

	t.Run("sqlite needs only url", func(t *testing.T) {
		r := RemoteConfig{Driver: DriverSQLite, URL: "./courses.db"}
		if !r.Configured() {
			t.Error("expected sqlite remote with path to be configured")
		}
	})
}
