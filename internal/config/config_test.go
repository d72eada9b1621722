package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMAGEFEED_CACHE_DIR", dir)
	t.Setenv("IMAGEFEED_LOG", filepath.Join(dir, "server.log"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, int64(200*1024*1024), cfg.DiskBudget)
	assert.Equal(t, int64(50*1024*1024), cfg.MemoryBudget)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Minute, cfg.FeedTTL)
	assert.Equal(t, 30, cfg.PerPage)
	assert.Equal(t, 4, cfg.Prefetch)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://api.unsplash.com", cfg.UnsplashBaseURL)

	assert.Equal(t, filepath.Join(dir, "images"), cfg.ImageDir())
	assert.Equal(t, filepath.Join(dir, "cache.sock"), cfg.CacheSocket)
	assert.Equal(t, filepath.Join(dir, "cache.bbolt"), cfg.CacheDB)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("IMAGEFEED_CACHE_DIR", dir)
	t.Setenv("IMAGEFEED_LOG", filepath.Join(dir, "server.log"))
	t.Setenv("IMAGEFEED_DISK_BUDGET", "1048576")
	t.Setenv("IMAGEFEED_FETCH_TIMEOUT", "5s")
	t.Setenv("IMAGEFEED_CACHE_SOCK", "/tmp/other.sock")
	t.Setenv("UNSPLASH_ACCESS_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<20), cfg.DiskBudget)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, "/tmp/other.sock", cfg.CacheSocket)
	assert.Equal(t, "key", cfg.UnsplashAccessKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PathsFromUserDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	t.Setenv("IMAGEFEED_CACHE_DIR", "")
	t.Setenv("IMAGEFEED_LOG", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.CacheDir)
	assert.True(t, strings.HasSuffix(cfg.LogPath, "imagefeed.log"), cfg.LogPath)
	assert.Equal(t, filepath.Join(cfg.CacheDir, "cache.bbolt"), cfg.CacheDB)
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("IMAGEFEED_CACHE_DIR", t.TempDir())
	t.Setenv("IMAGEFEED_FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		DiskBudget:   1,
		MemoryBudget: 1,
		FetchTimeout: time.Second,
		PerPage:      1,
		GalleryURL:   "https://example.com/gallery",
	}
	require.NoError(t, cfg.Validate())

	cfg.DiskBudget = 0
	cfg.PerPage = -1
	cfg.GalleryURL = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IMAGEFEED_DISK_BUDGET")
	assert.Contains(t, err.Error(), "IMAGEFEED_PER_PAGE")
	assert.Contains(t, err.Error(), "UNSPLASH_ACCESS_KEY")
}
