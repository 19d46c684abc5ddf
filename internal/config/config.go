package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	defaultListen   = "127.0.0.1:8080"
	defaultFeedID   = "teamup"
	defaultFeedURL  = "https://ics.teamup.com/feed/ks58vf85ajmc6pd7vu/0.ics"
	defaultRefresh  = "*/15 * * * *"
	defaultCacheDir = "/var/lib/livecal/ics-cache"
	defaultCacheTTL = 30
	defaultLogLevel = "info"
)

// FeedConfig is the calendar feed concerts are read from.
type FeedConfig struct {
	ID  string `yaml:"id" json:"id"`
	URL string `yaml:"url" json:"url"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	Feed FeedConfig `yaml:"feed" json:"feed"`

	// RefreshCron is a cron spec (e.g. "*/15 * * * *") for background refreshes.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheDir holds the on-disk copy of the last fetched feed.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// UpcomingOnly drops concerts that already started. Pointer so that an
	// explicit false survives Normalize.
	UpcomingOnly *bool `yaml:"upcoming_only" json:"upcoming_only"`

	// CacheTTLSeconds bounds how stale a snapshot may be before an API
	// request triggers a refresh.
	CacheTTLSeconds int `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds"`

	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if set, protects everything except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	upcoming := true
	return &Config{
		Listen:          defaultListen,
		Feed:            FeedConfig{ID: defaultFeedID, URL: defaultFeedURL},
		RefreshCron:     defaultRefresh,
		CacheDir:        defaultCacheDir,
		UpcomingOnly:    &upcoming,
		CacheTTLSeconds: defaultCacheTTL,
		LogLevel:        defaultLogLevel,
	}
}

// Normalize fills in missing/zero values with defaults so that partially
// filled configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.Feed.URL == "" {
		c.Feed.URL = defaultFeedURL
	}
	if c.Feed.ID == "" {
		c.Feed.ID = defaultFeedID
	}
	if c.RefreshCron == "" {
		c.RefreshCron = defaultRefresh
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.UpcomingOnly == nil {
		upcoming := true
		c.UpcomingOnly = &upcoming
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = defaultCacheTTL
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
}

// Load reads the YAML config at path. On first run (no file) it writes the
// defaults there with 0600 permissions and returns them.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg to path atomically (temp file + rename) with 0600 perms.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".livecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
