package common

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dtnitsch/whatif/models"
	"github.com/dtnitsch/whatif/pkg/caching"
	"github.com/dtnitsch/whatif/pkg/db"
	"github.com/dtnitsch/whatif/pkg/fetcher"
	"github.com/dtnitsch/whatif/pkg/legacy"
	"github.com/dtnitsch/whatif/pkg/repository"
	"github.com/urfave/cli/v2"
)

const cacheDir = ".cache"

// GlobalFlags are accepted before any command.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "whatif.yaml", Usage: "YAML config file (optional)"},
		&cli.StringFlag{Name: "db", Usage: "Article database path"},
		&cli.StringFlag{Name: "offline-root", Usage: "Directory holding downloaded articles"},
		&cli.StringFlag{Name: "legacy-prefs", Usage: "Read/favorite flags from an older install, imported on first sync"},
		&cli.StringFlag{Name: "base-url", Usage: "Site root to sync from"},
		&cli.BoolFlag{Name: "offline", Usage: "Read downloaded copies and download new articles on sync"},
		&cli.BoolFlag{Name: "no-sync-download", Usage: "Never download articles during sync (metered networks)"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent article downloads"},
		&cli.BoolFlag{Name: "amoled", Usage: "Use the amoled stylesheet"},
		&cli.BoolFlag{Name: "night", Usage: "Use the night stylesheet"},
		&cli.BoolFlag{Name: "invert", Usage: "Invert images in night/amoled stylesheets"},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log errors"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Log debug output"},
	}
}

// NewLogger builds the JSON stderr logger for the log level flags.
func NewLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// LoadConfig reads the config file, then applies any flags that were set.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("offline-root") {
		cfg.OfflineRoot = c.String("offline-root")
	}
	if c.IsSet("legacy-prefs") {
		cfg.LegacyPrefs = c.String("legacy-prefs")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("offline") {
		cfg.OfflineMode = c.Bool("offline")
	}
	if c.Bool("no-sync-download") {
		cfg.AllowOfflineDownload = false
	}
	if c.IsSet("workers") {
		if c.Int("workers") <= 0 {
			return nil, fmt.Errorf("--workers must be positive, got %d", c.Int("workers"))
		}
		cfg.WorkerCount = c.Int("workers")
	}
	if c.IsSet("amoled") {
		cfg.Theme.Amoled = c.Bool("amoled")
	}
	if c.IsSet("night") {
		cfg.Theme.Night = c.Bool("night")
	}
	if c.IsSet("invert") {
		cfg.Theme.Invert = c.Bool("invert")
	}
	return cfg, nil
}

// Env is everything a command needs. Close releases the database.
type Env struct {
	Config *models.Config
	DB     *db.DB
	Repo   *repository.Repository
	Logger *slog.Logger
}

func (e *Env) Close() error {
	return e.DB.Close()
}

// Setup loads configuration and wires the repository.
func Setup(c *cli.Context) (*Env, error) {
	logger := NewLogger(c)

	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, err
	}
	logger.Debug("Config loaded", "db", cfg.DBPath, "offline_root", cfg.OfflineRoot, "offline", cfg.OfflineMode, "workers", cfg.WorkerCount)

	cache, err := caching.NewCache(filepath.Join(cfg.OfflineRoot, cacheDir), cfg.IndexCacheTTL)
	if err != nil {
		return nil, err
	}
	client := fetcher.NewFetcher(fetcher.Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		RateLimit: cfg.RateLimit,
		Cache:     cache,
	})

	prefs, err := legacy.LoadFile(cfg.LegacyPrefs)
	if err != nil {
		// Migration is best effort; a broken file only loses the old flags.
		logger.Warn("Ignoring legacy preferences", "path", cfg.LegacyPrefs, "error", err)
		prefs = legacy.New(nil, nil)
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Env{
		Config: cfg,
		DB:     database,
		Repo:   repository.New(cfg, database, client, prefs, logger),
		Logger: logger,
	}, nil
}
