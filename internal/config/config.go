// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Browser
	BrowserPath string `json:"browser_path,omitempty"` // Path to the Chrome/Chromium binary
	Headless    bool   `json:"headless,omitempty"`     // Run the browser without a window
	UserAgent   string `json:"user_agent,omitempty"`   // Override the browser user agent
	Locale      string `json:"locale,omitempty"`       // Browser locale, e.g. en-US

	// Session storage
	StateDir    string `json:"state_dir,omitempty"`    // Directory for session state files
	Store       string `json:"store,omitempty"`        // Session store backend: "file" or "postgres"
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL

	// Services
	SigningURL string `json:"signing_url,omitempty"` // Base URL of the request signing service

	// Behavior
	ArtifactDir      string `json:"artifact_dir,omitempty"`      // Directory for debug screenshots and page dumps
	Verbose          bool   `json:"verbose,omitempty"`           // Print detailed run information
	InteractiveLogin bool   `json:"interactive_login,omitempty"` // Allow a headed login when no session exists
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	switch c.Store {
	case "", "file", "postgres":
	default:
		return fmt.Errorf("config error: 'store' must be \"file\" or \"postgres\", got %q", c.Store)
	}

	if c.Store == "postgres" && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required when 'store' is \"postgres\"")
	}

	if c.BrowserPath != "" {
		if _, err := os.Stat(c.BrowserPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: browser binary not found: %s", c.BrowserPath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.BrowserPath == "" {
		result.BrowserPath = defaults.BrowserPath
	}
	if result.UserAgent == "" {
		result.UserAgent = defaults.UserAgent
	}
	if result.Locale == "" {
		result.Locale = defaults.Locale
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.Store == "" {
		result.Store = defaults.Store
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SigningURL == "" {
		result.SigningURL = defaults.SigningURL
	}
	if result.ArtifactDir == "" {
		result.ArtifactDir = defaults.ArtifactDir
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
