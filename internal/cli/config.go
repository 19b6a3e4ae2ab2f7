package cli

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	apperrors "github.com/matzehuels/releasestats/pkg/errors"
)

// Config is the optional config.toml. Command-line flags take precedence
// over every key. The token is never read from the file.
type Config struct {
	APIURL        string   `toml:"api_url"`
	UserAgent     string   `toml:"user_agent"`
	CacheDir      string   `toml:"cache_dir"`
	CacheTTL      Duration `toml:"cache_ttl"`
	RedisURL      string   `toml:"redis_url"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	Formats       []string `toml:"formats"`
	MinDays       float64  `toml:"min_days"`
}

// Duration is a time.Duration written as a string ("24h", "90m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// configPath returns the config file location using XDG standard
// (~/.config/release-stats-csv/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// readConfig decodes the file at path. A missing file yields an empty
// config unless required is set.
func readConfig(path string, required bool) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return &cfg, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput,
			"config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// loadConfig reads the config file and applies it to every flag the user
// did not set explicitly.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	path, required := c.opts.configPath, true
	if path == "" {
		p, err := configPath()
		if err != nil {
			return nil
		}
		path, required = p, false
	}

	cfg, err := readConfig(path, required)
	if err != nil {
		return err
	}
	c.applyConfig(cfg, func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	})
	c.Logger.Debug("loaded config", "path", path)
	return nil
}

// applyConfig copies non-zero config values into options whose flag is
// not changed.
func (c *CLI) applyConfig(cfg *Config, changed func(string) bool) {
	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}
	setString("api-url", &c.opts.apiURL, cfg.APIURL)
	setString("user-agent", &c.opts.userAgent, cfg.UserAgent)
	setString("cache-dir", &c.opts.cacheDir, cfg.CacheDir)
	setString("redis-url", &c.opts.redisURL, cfg.RedisURL)
	setString("mongo-uri", &c.opts.mongoURI, cfg.MongoURI)
	setString("mongo-database", &c.opts.mongoDatabase, cfg.MongoDatabase)
	setString("format", &c.opts.formats, strings.Join(cfg.Formats, ","))

	if cfg.CacheTTL.Duration > 0 && !changed("cache-ttl") {
		c.opts.cacheTTL = cfg.CacheTTL.Duration
	}
	if cfg.MinDays > 0 && !changed("min-days") {
		c.opts.minDays = cfg.MinDays
	}
}
