// Package config handles configuration for agui.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/diogo/agui/internal/models"
)

// Environment variables that override the config file
const (
	EnvEndpoint = "AGUI_ENDPOINT"
	EnvDebug    = "AGUI_DEBUG"
	EnvTheme    = "AGUI_THEME"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", "dracula", "tokyo-night" or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the URL every message is POSTed to.
	Endpoint string `json:"endpoint"`
	// TimeoutSeconds bounds a single query at the transport level.
	// The chat itself never gives up on a request earlier than this.
	TimeoutSeconds int `json:"timeout_seconds"`
	// Greeting is the assistant message that opens each session.
	Greeting        string         `json:"greeting,omitempty"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	LogFile         string         `json:"log_file,omitempty"`
	Debug           bool           `json:"debug"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.DefaultEndpoint,
		TimeoutSeconds:  300,
		Greeting:        models.DefaultGreeting,
		TUITheme:        "tokyonight",
		CopyToClipboard: false,
		Debug:           false,
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".agui"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the log file path from config, defaulting to the config dir
func GetLogPath(cfg Config) (string, error) {
	if cfg.LogFile != "" {
		return cfg.LogFile, nil
	}
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "agui.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment overrides.
// A .env file in the working directory is read first; variables already
// set in the environment win over it.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return applyEnv(cfg), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnv(cfg), nil
		}
		return applyEnv(cfg), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return applyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnv(normalize(cfg)), nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that cfg can be used to talk to a backend
func Validate(cfg Config) error {
	if err := ValidateEndpoint(cfg.Endpoint); err != nil {
		return err
	}
	if cfg.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", cfg.TimeoutSeconds)
	}
	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// Keys returns the settable config keys in display order
func Keys() []string {
	return []string{
		"endpoint",
		"timeout_seconds",
		"greeting",
		"tui_theme",
		"copy_to_clipboard",
		"log_file",
		"debug",
		"markdown.style",
	}
}

// Set assigns value to the named key, parsing it for the key's type
func (c *Config) Set(key, value string) error {
	switch key {
	case "endpoint":
		if err := ValidateEndpoint(value); err != nil {
			return err
		}
		c.Endpoint = value
	case "timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", value)
		}
		c.TimeoutSeconds = n
	case "greeting":
		c.Greeting = value
	case "tui_theme":
		c.TUITheme = value
	case "copy_to_clipboard", "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		if key == "debug" {
			c.Debug = b
		} else {
			c.CopyToClipboard = b
		}
	case "log_file":
		c.LogFile = value
	case "markdown.style":
		c.Markdown.Style = value
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Get returns the string form of the named key
func (c Config) Get(key string) (string, error) {
	switch key {
	case "endpoint":
		return c.Endpoint, nil
	case "timeout_seconds":
		return strconv.Itoa(c.TimeoutSeconds), nil
	case "greeting":
		return c.Greeting, nil
	case "tui_theme":
		return c.TUITheme, nil
	case "copy_to_clipboard":
		return strconv.FormatBool(c.CopyToClipboard), nil
	case "log_file":
		return c.LogFile, nil
	case "debug":
		return strconv.FormatBool(c.Debug), nil
	case "markdown.style":
		return c.Markdown.Style, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// normalize fills fields a partial config file left at zero values
func normalize(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = def.TimeoutSeconds
	}
	if cfg.Greeting == "" {
		cfg.Greeting = def.Greeting
	}
	if cfg.TUITheme == "" {
		cfg.TUITheme = def.TUITheme
	}
	if cfg.Markdown.Style == "" {
		cfg.Markdown.Style = def.Markdown.Style
	}
	return cfg
}

func applyEnv(cfg Config) Config {
	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	if debug := os.Getenv(EnvDebug); debug != "" {
		if b, err := strconv.ParseBool(debug); err == nil {
			cfg.Debug = b
		}
	}
	if theme := os.Getenv(EnvTheme); theme != "" {
		cfg.TUITheme = theme
	}
	return cfg
}
