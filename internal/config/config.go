// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	gap "github.com/muesli/go-app-paths"
)

const appName = "imagefeed"

// Config holds every tunable of the server and the cache daemon.
type Config struct {
	CacheDir     string        `env:"IMAGEFEED_CACHE_DIR"`
	DiskBudget   int64         `env:"IMAGEFEED_DISK_BUDGET"   envDefault:"209715200"`
	MemoryBudget int64         `env:"IMAGEFEED_MEMORY_BUDGET" envDefault:"52428800"`
	FetchTimeout time.Duration `env:"IMAGEFEED_FETCH_TIMEOUT" envDefault:"30s"`
	Prefetch     int           `env:"IMAGEFEED_PREFETCH"      envDefault:"4"`

	FeedTTL    time.Duration `env:"IMAGEFEED_FEED_TTL"    envDefault:"15m"`
	PerPage    int           `env:"IMAGEFEED_PER_PAGE"    envDefault:"30"`
	GalleryURL string        `env:"IMAGEFEED_GALLERY_URL"`

	UnsplashAccessKey string `env:"UNSPLASH_ACCESS_KEY"`
	UnsplashBaseURL   string `env:"UNSPLASH_BASE_URL" envDefault:"https://api.unsplash.com"`

	CacheSocket string `env:"IMAGEFEED_CACHE_SOCK"`
	CacheDB     string `env:"IMAGEFEED_CACHE_DB"`

	LogPath  string `env:"IMAGEFEED_LOG"`
	LogLevel string `env:"IMAGEFEED_LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and fills unset paths from the user's
// cache and log directories.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.applyPathDefaults(gap.NewScope(gap.User, appName)); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ImageDir is where the disk image cache keeps its files.
func (c Config) ImageDir() string { return filepath.Join(c.CacheDir, "images") }

// Validate reports settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.DiskBudget <= 0 {
		errs = append(errs, errors.New("IMAGEFEED_DISK_BUDGET must be positive"))
	}
	if c.MemoryBudget <= 0 {
		errs = append(errs, errors.New("IMAGEFEED_MEMORY_BUDGET must be positive"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, errors.New("IMAGEFEED_FETCH_TIMEOUT must be positive"))
	}
	if c.PerPage <= 0 {
		errs = append(errs, errors.New("IMAGEFEED_PER_PAGE must be positive"))
	}
	if c.UnsplashAccessKey == "" && c.GalleryURL == "" {
		errs = append(errs, errors.New("set UNSPLASH_ACCESS_KEY or IMAGEFEED_GALLERY_URL"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyPathDefaults(scope *gap.Scope) error {
	if c.CacheDir == "" {
		dir, err := scope.CacheDir()
		if err != nil {
			return fmt.Errorf("resolve cache dir: %w", err)
		}
		c.CacheDir = dir
	}
	if c.CacheSocket == "" {
		c.CacheSocket = filepath.Join(c.CacheDir, "cache.sock")
	}
	if c.CacheDB == "" {
		c.CacheDB = filepath.Join(c.CacheDir, "cache.bbolt")
	}
	if c.LogPath == "" {
		path, err := scope.LogPath(appName + ".log")
		if err != nil {
			return fmt.Errorf("resolve log path: %w", err)
		}
		c.LogPath = path
	}
	return nil
}
