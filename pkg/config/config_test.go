package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Missions.StaleAfter)
	assert.Equal(t, 10*time.Minute, cfg.Missions.RetainFor)
	assert.Equal(t, 2*time.Minute, cfg.Participations.StaleAfter)
	assert.Equal(t, 2, cfg.Retries)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
base_url: http://api.example.com:3001
missions:
  stale_after: 1m
  retain_for: 2m
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com:3001", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.Missions.StaleAfter)
	assert.Equal(t, 2*time.Minute, cfg.Missions.RetainFor)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultRequestTimeout, cfg.RequestTimeout)
	assert.Equal(t, DefaultParticipationStale, cfg.Participations.StaleAfter)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://from-file:3001\n"), 0644))

	t.Setenv("ECOACTION_BASE_URL", "http://from-env:3001")
	t.Setenv("ECOACTION_RETRIES", "5")
	t.Setenv("ECOACTION_REQUEST_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:3001", cfg.BaseURL)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"retain shorter than stale", func(c *Config) {
			c.Missions = CacheWindow{StaleAfter: 10 * time.Minute, RetainFor: time.Minute}
		}},
		{"zero participation window", func(c *Config) {
			c.Participations.StaleAfter = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
