package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	// Create temp config file
	content := `{
		"headless": true,
		"state_dir": "/var/lib/publisher/sessions",
		"store": "postgres",
		"database_url": "postgres://localhost:5432/publisher",
		"signing_url": "http://localhost:8787",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.True(t, cfg.Headless)
	assert.Equal(t, "/var/lib/publisher/sessions", cfg.StateDir)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "postgres://localhost:5432/publisher", cfg.DatabaseURL)
	assert.Equal(t, "http://localhost:8787", cfg.SigningURL)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	content := `{ invalid json }`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate_OK(t *testing.T) {
	cfg := &Config{Store: "file", StateDir: "sessions"}
	assert.NoError(t, cfg.Validate())
}

func TestValidate_UnknownStore(t *testing.T) {
	cfg := &Config{Store: "redis"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store")
}

func TestValidate_PostgresRequiresDatabaseURL(t *testing.T) {
	cfg := &Config{Store: "postgres"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database_url")

	cfg.DatabaseURL = "postgres://localhost/publisher"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_BrowserPathMustExist(t *testing.T) {
	cfg := &Config{BrowserPath: "/no/such/chrome"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "browser binary not found")
}

func TestMergeWithDefaults_FillsEmptyFields(t *testing.T) {
	cfg := Config{SigningURL: "http://localhost:8787"}
	defaults := Config{
		StateDir:   "sessions",
		Store:      "file",
		Locale:     "en-US",
		SigningURL: "http://default:9999",
	}

	merged := cfg.MergeWithDefaults(defaults)

	assert.Equal(t, "sessions", merged.StateDir)
	assert.Equal(t, "file", merged.Store)
	assert.Equal(t, "en-US", merged.Locale)
	// Explicit values win over defaults.
	assert.Equal(t, "http://localhost:8787", merged.SigningURL)
}

func TestMergeWithDefaults_DoesNotTouchBools(t *testing.T) {
	cfg := Config{Headless: false}
	merged := cfg.MergeWithDefaults(Config{Headless: true})
	assert.False(t, merged.Headless)
}
