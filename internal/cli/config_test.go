package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	path, err := configPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", appName, "config.toml"), path)

	t.Setenv("XDG_CONFIG_HOME", "")
	path, err = configPath()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".config", appName, "config.toml"), path)
}

func TestReadConfig(t *testing.T) {
	path := writeConfig(t, `
api_url = "https://ghe.example.com/api/v3"
user_agent = "stats-bot"
cache_dir = "/var/cache/stats"
cache_ttl = "6h"
redis_url = "redis://localhost:6379/1"
mongo_uri = "mongodb://localhost:27017"
mongo_database = "metrics"
formats = ["csv", "json"]
min_days = 1.5
`)
	cfg, err := readConfig(path, true)
	require.NoError(t, err)

	assert.Equal(t, "https://ghe.example.com/api/v3", cfg.APIURL)
	assert.Equal(t, "stats-bot", cfg.UserAgent)
	assert.Equal(t, "/var/cache/stats", cfg.CacheDir)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL.Duration)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
	assert.Equal(t, "metrics", cfg.MongoDatabase)
	assert.Equal(t, []string{"csv", "json"}, cfg.Formats)
	assert.Equal(t, 1.5, cfg.MinDays)
}

func TestReadConfig_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")

	cfg, err := readConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, Config{}, *cfg)

	_, err = readConfig(path, true)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      `api_url = `,
		"unknown key": `token = "abc"`,
		"bad ttl":     `cache_ttl = "a day"`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readConfig(writeConfig(t, body), true)
			require.Error(t, err)
			assert.Equal(t, 1, apperrors.ExitCode(err))
		})
	}
}

func TestApplyConfig_FlagsWin(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.opts.apiURL = "https://flag.example.com"
	c.opts.cacheDir = "/tmp"
	c.opts.formats = "csv"

	cfg := &Config{
		APIURL:   "https://file.example.com",
		CacheDir: "/var/cache/stats",
		CacheTTL: Duration{time.Hour},
		Formats:  []string{"json", "table"},
		MinDays:  2,
	}
	c.applyConfig(cfg, func(name string) bool { return name == "api-url" })

	assert.Equal(t, "https://flag.example.com", c.opts.apiURL)
	assert.Equal(t, "/var/cache/stats", c.opts.cacheDir)
	assert.Equal(t, time.Hour, c.opts.cacheTTL)
	assert.Equal(t, "json,table", c.opts.formats)
	assert.Equal(t, 2.0, c.opts.minDays)
}

func TestRoot_ConfigFile(t *testing.T) {
	path := writeConfig(t, `formats = ["xml"]`)
	_, err := execute(t, map[string]string{tokenEnv: "secret"}, "acme", "app", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}
