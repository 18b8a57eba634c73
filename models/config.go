// Package models defines data structures for configuration, articles and sync results.
package models

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL       = "https://what-if.xkcd.com"
	DefaultWorkerCount   = 8
	DefaultImageWorkers  = 4
	DefaultTimeout       = 30 * time.Second
	DefaultRateLimit     = 5.0
	DefaultIndexCacheTTL = 10 * time.Minute
	DefaultUserAgent     = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Config holds runtime configuration. Values come from an optional YAML file
// and are then overridden by CLI flags.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	DBPath      string `yaml:"db_path"`
	OfflineRoot string `yaml:"offline_root"`
	LegacyPrefs string `yaml:"legacy_prefs"`
	UserAgent   string `yaml:"user_agent"`

	// OfflineMode serves reads from downloaded copies and downloads new
	// articles during sync.
	OfflineMode bool `yaml:"offline_mode"`
	// AllowOfflineDownload gates downloads triggered by sync (metered networks).
	AllowOfflineDownload bool `yaml:"allow_offline_download"`

	WorkerCount   int           `yaml:"workers"`
	ImageWorkers  int           `yaml:"image_workers"`
	Timeout       time.Duration `yaml:"timeout"`
	RateLimit     float64       `yaml:"rate_limit"`
	IndexCacheTTL time.Duration `yaml:"index_cache_ttl"`

	Theme Theme `yaml:"theme"`
}

// DefaultConfig returns a Config with every field set to its default.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:              DefaultBaseURL,
		DBPath:               "whatif.db",
		OfflineRoot:          "whatif-offline",
		UserAgent:            DefaultUserAgent,
		AllowOfflineDownload: true,
		WorkerCount:          DefaultWorkerCount,
		ImageWorkers:         DefaultImageWorkers,
		Timeout:              DefaultTimeout,
		RateLimit:            DefaultRateLimit,
		IndexCacheTTL:        DefaultIndexCacheTTL,
	}
}

// LoadConfig reads a YAML config file on top of the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills zero values left by a partial config file.
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.OfflineRoot == "" {
		c.OfflineRoot = def.OfflineRoot
	}
	if c.UserAgent == "" {
		c.UserAgent = def.UserAgent
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = def.WorkerCount
	}
	if c.ImageWorkers <= 0 {
		c.ImageWorkers = def.ImageWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.RateLimit <= 0 {
		c.RateLimit = def.RateLimit
	}
	if c.IndexCacheTTL < 0 {
		c.IndexCacheTTL = 0
	}
}
