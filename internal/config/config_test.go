package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/agui/internal/models"
)

// isolateHome points HOME at a temp dir and clears override variables
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvEndpoint, "")
	t.Setenv(EnvDebug, "")
	t.Setenv(EnvTheme, "")
	return home
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != models.DefaultEndpoint {
		t.Errorf("Expected default endpoint %s, got %s", models.DefaultEndpoint, cfg.Endpoint)
	}
	if cfg.TimeoutSeconds != 300 {
		t.Errorf("Expected TimeoutSeconds 300, got %d", cfg.TimeoutSeconds)
	}
	if cfg.Greeting != models.DefaultGreeting {
		t.Errorf("Expected default greeting, got %q", cfg.Greeting)
	}
	if cfg.Debug {
		t.Error("Expected Debug to be false")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	home := isolateHome(t)

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if path != filepath.Join(home, ".agui", "config.json") {
		t.Errorf("GetConfigPath() = %s", path)
	}

	logPath, err := GetLogPath(DefaultConfig())
	if err != nil {
		t.Fatalf("GetLogPath() returned error: %v", err)
	}
	if logPath != filepath.Join(home, ".agui", "agui.log") {
		t.Errorf("GetLogPath() = %s", logPath)
	}

	custom, _ := GetLogPath(Config{LogFile: "/tmp/x.log"})
	if custom != "/tmp/x.log" {
		t.Errorf("GetLogPath() = %s, want /tmp/x.log", custom)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	isolateHome(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Endpoint != models.DefaultEndpoint {
		t.Errorf("expected defaults, got endpoint %s", cfg.Endpoint)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	home := isolateHome(t)

	cfg := DefaultConfig()
	cfg.Endpoint = "http://127.0.0.1:9000/query"
	cfg.TimeoutSeconds = 30
	cfg.Greeting = "Hello!"

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ".agui", "config.json"))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file permissions = %o, want 600", perm)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.Endpoint != cfg.Endpoint || loaded.TimeoutSeconds != 30 || loaded.Greeting != "Hello!" {
		t.Errorf("LoadConfig() = %+v", loaded)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".agui")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(map[string]any{"endpoint": "http://example.com/query"})
	if err := os.WriteFile(filepath.Join(dir, "config.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Endpoint != "http://example.com/query" {
		t.Errorf("Endpoint = %s", cfg.Endpoint)
	}
	if cfg.TimeoutSeconds != 300 {
		t.Errorf("TimeoutSeconds = %d, want default 300", cfg.TimeoutSeconds)
	}
	if cfg.Greeting != models.DefaultGreeting {
		t.Errorf("Greeting = %q, want default", cfg.Greeting)
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".agui")
	_ = os.MkdirAll(dir, 0o700)
	_ = os.WriteFile(filepath.Join(dir, "config.json"), []byte("{not json"), 0o600)

	cfg, err := LoadConfig()
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("unexpected error: %v", err)
	}
	if cfg.Endpoint != models.DefaultEndpoint {
		t.Error("expected defaults on parse error")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	isolateHome(t)
	t.Setenv(EnvEndpoint, "http://override:1234/query")
	t.Setenv(EnvDebug, "true")
	t.Setenv(EnvTheme, "nord")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Endpoint != "http://override:1234/query" {
		t.Errorf("Endpoint = %s", cfg.Endpoint)
	}
	if !cfg.Debug {
		t.Error("Debug should be true from env")
	}
	if cfg.TUITheme != "nord" {
		t.Errorf("TUITheme = %s", cfg.TUITheme)
	}
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"http://localhost:8000/query", false},
		{"https://example.com/api/query", false},
		{"ftp://example.com/query", true},
		{"localhost:8000/query", true},
		{"http:///query", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			err := ValidateEndpoint(tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpoint(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
		})
	}
}

func TestConfigSetGet(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"endpoint", "http://127.0.0.1:8080/query", false},
		{"endpoint", "not a url", true},
		{"timeout_seconds", "45", false},
		{"timeout_seconds", "-1", true},
		{"timeout_seconds", "abc", true},
		{"greeting", "Yo", false},
		{"tui_theme", "dracula", false},
		{"copy_to_clipboard", "true", false},
		{"copy_to_clipboard", "maybe", true},
		{"debug", "false", false},
		{"log_file", "/tmp/agui.log", false},
		{"markdown.style", "light", false},
		{"unknown", "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != tt.value {
				t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestKeysAreGettable(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%s) error = %v", key, err)
		}
	}
}
