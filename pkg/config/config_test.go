package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "https://opengameart.org", config.Site.BaseURL)
	assert.Equal(t, "Mozilla/5.0", config.Site.UserAgent)
	assert.Equal(t, []string{"13"}, config.Site.ArtTypes)
	assert.Equal(t, []string{"2"}, config.Site.Licenses)
	assert.Equal(t, 2, config.Download.MaxPerQuery)
	assert.Equal(t, time.Second, config.Download.Delay)
	assert.Equal(t, 1, config.Download.Workers)
	assert.Equal(t, 1, config.Retry.MaxAttempts)
	assert.False(t, config.Site.RespectRobots)
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, config.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AUDIOFETCH_OUTPUT_DIR", "/tmp/audio")
	t.Setenv("AUDIOFETCH_USER_AGENT", "audiofetch-test")
	t.Setenv("AUDIOFETCH_MAX_PER_QUERY", "5")
	t.Setenv("AUDIOFETCH_DOWNLOAD_DELAY", "250ms")
	t.Setenv("AUDIOFETCH_REQUESTS_PER_MINUTE", "30")
	t.Setenv("AUDIOFETCH_LOG_LEVEL", "debug")
	t.Setenv("AUDIOFETCH_WORKERS", "2")

	config := DefaultConfig()
	require.NoError(t, config.LoadFromEnv())

	assert.Equal(t, "/tmp/audio", config.Output.BaseDirectory)
	assert.Equal(t, "audiofetch-test", config.Site.UserAgent)
	assert.Equal(t, 5, config.Download.MaxPerQuery)
	assert.Equal(t, 250*time.Millisecond, config.Download.Delay)
	assert.Equal(t, 30, config.RateLimit.RequestsPerMinute)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 2, config.Download.Workers)
}

func TestLoadFromEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv("AUDIOFETCH_MAX_PER_QUERY", "many")
	t.Setenv("AUDIOFETCH_DOWNLOAD_DELAY", "soon")

	config := DefaultConfig()
	err := config.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIOFETCH_MAX_PER_QUERY")
	assert.Contains(t, err.Error(), "AUDIOFETCH_DOWNLOAD_DELAY")
	assert.Equal(t, 2, config.Download.MaxPerQuery)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
output:
  base_directory: ./sounds
download:
  max_per_query: 3
  delay: 2s
site:
  licenses: ["2", "4"]
catalog:
  - name: music
    queries:
      - battle theme
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config := DefaultConfig()
	require.NoError(t, config.LoadFromFile(path))

	assert.Equal(t, "./sounds", config.Output.BaseDirectory)
	assert.Equal(t, 3, config.Download.MaxPerQuery)
	assert.Equal(t, 2*time.Second, config.Download.Delay)
	assert.Equal(t, []string{"2", "4"}, config.Site.Licenses)
	require.Len(t, config.Catalog, 1)
	assert.Equal(t, "music", config.Catalog[0].Name)
	// untouched sections keep their defaults
	assert.Equal(t, "Mozilla/5.0", config.Site.UserAgent)
}

func TestLoadFromFileMissing(t *testing.T) {
	config := DefaultConfig()
	err := config.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"relative base url", func(c *Config) { c.Site.BaseURL = "opengameart.org" }, "must be absolute"},
		{"empty user agent", func(c *Config) { c.Site.UserAgent = "" }, "user agent"},
		{"zero cap", func(c *Config) { c.Download.MaxPerQuery = 0 }, "max per query"},
		{"negative delay", func(c *Config) { c.Download.Delay = -time.Second }, "delay"},
		{"too many workers", func(c *Config) { c.Download.Workers = 20 }, "workers"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "max attempts"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "invalid log level"},
		{"empty catalog", func(c *Config) { c.Catalog = nil }, "catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)

			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	config := DefaultConfig()
	config.Site.UserAgent = ""
	config.Download.MaxPerQuery = -1

	err := config.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "user agent")
	assert.Contains(t, err.Error(), "max per query")
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()
	config.MergeCommandLineFlags(map[string]interface{}{
		"output":        "/data/audio",
		"max-per-query": 4,
		"delay":         500 * time.Millisecond,
		"dry-run":       true,
		"log-level":     "warn",
	})

	assert.Equal(t, "/data/audio", config.Output.BaseDirectory)
	assert.Equal(t, 4, config.Download.MaxPerQuery)
	assert.Equal(t, 500*time.Millisecond, config.Download.Delay)
	assert.True(t, config.Download.DryRun)
	assert.Equal(t, "warn", config.Logging.Level)
	// absent flags leave values alone
	assert.Equal(t, 1, config.Download.Workers)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("download:\n  max_per_query: 3\n  workers: 2\n"), 0644))

	t.Setenv("HOME", dir)
	t.Setenv("AUDIOFETCH_MAX_PER_QUERY", "4")

	config, err := Load(path, map[string]interface{}{"workers": 3})
	require.NoError(t, err)

	assert.Equal(t, 4, config.Download.MaxPerQuery, "env overrides file")
	assert.Equal(t, 3, config.Download.Workers, "flags override file")
}

func TestLoadFailsValidation(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load("", map[string]interface{}{"max-per-query": 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	config := DefaultConfig()
	config.Download.Delay = 3 * time.Second
	require.NoError(t, config.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, config, loaded)
}
