package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.True(t, cfg.Cache.Enabled)
	require.Equal(t, "redis://localhost:6379/0", cfg.Cache.RedisURL)
	require.Equal(t, 300, cfg.Cache.TTLSeconds)
	require.Equal(t, 20, cfg.Scraper.PostsLimit)
	require.Equal(t, 20, cfg.Scraper.EmployeesLimit)
	require.True(t, cfg.Headless.Enabled)
	require.Equal(t, 3, cfg.Headless.ScrollCount)
	require.Equal(t, "none", cfg.Snapshots.Provider)
	require.Equal(t, "none", cfg.Events.Provider)
	require.Equal(t, "gemini-1.5-flash", cfg.AI.Model)
	require.False(t, cfg.AIEnabled())
	require.True(t, cfg.Logging.Development)
}

func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
cache:
  enabled: false
  ttl_seconds: 60
ai:
  api_key: test-key
  model: gemini-1.5-pro
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.False(t, cfg.Cache.Enabled)
	require.Equal(t, 60, cfg.Cache.TTLSeconds)
	require.True(t, cfg.AIEnabled())
	require.Equal(t, "gemini-1.5-pro", cfg.AI.Model)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero port",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "server.port",
		},
		{
			name:    "auth without key",
			mutate:  func(c *Config) { c.Auth.Enabled = true },
			wantErr: "auth.api_key",
		},
		{
			name:    "cache without url",
			mutate:  func(c *Config) { c.Cache.RedisURL = "" },
			wantErr: "cache.redis_url",
		},
		{
			name:    "zero scrape timeout",
			mutate:  func(c *Config) { c.Scraper.TimeoutSeconds = 0 },
			wantErr: "scraper.timeout_seconds",
		},
		{
			name:    "headless without slots",
			mutate:  func(c *Config) { c.Headless.MaxParallel = 0 },
			wantErr: "headless.max_parallel",
		},
		{
			name:    "unknown snapshot provider",
			mutate:  func(c *Config) { c.Snapshots.Provider = "s3" },
			wantErr: "snapshots.provider",
		},
		{
			name:    "gcs snapshots without bucket",
			mutate:  func(c *Config) { c.Snapshots.Provider = "gcs" },
			wantErr: "snapshots.gcs_bucket",
		},
		{
			name:    "pubsub events without topic",
			mutate:  func(c *Config) { c.Events.Provider = "pubsub"; c.Events.ProjectID = "p" },
			wantErr: "events.project_id and events.topic_name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
