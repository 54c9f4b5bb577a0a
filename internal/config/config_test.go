package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileEnvAndDefaults(t *testing.T) {
	content := `{
		"database_url": "postgres://file/db",
		"gemini_api_key": "file-key",
		"rolling_window": 50
	}`
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SCRAPE_CONCURRENCY", "3")
	t.Setenv("DATABASE_URL", "")

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, "postgres://file/db", cfg.DatabaseURL)
	assert.Equal(t, "env-key", cfg.GeminiAPIKey, "environment must win over file")
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, 50, cfg.RollingWindow)
	assert.Equal(t, DefaultInactiveAfterDays, cfg.InactiveAfterDays)
	assert.Equal(t, 2*time.Second, cfg.ScrapeDelay())
	assert.Equal(t, 30*24*time.Hour, cfg.RediscoveryCooldown())
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte("{not json"), 0644))

	_, err := Load(tmpFile)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://x"
	assert.Error(t, cfg.Validate())

	cfg.GeminiAPIKey = "key"
	assert.NoError(t, cfg.Validate())
}
