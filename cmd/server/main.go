package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Kim-Junhwan/ImageFeed/internal/cache"
	"github.com/Kim-Junhwan/ImageFeed/internal/config"
	"github.com/Kim-Junhwan/ImageFeed/internal/feed"
	"github.com/Kim-Junhwan/ImageFeed/internal/imagecache"
	"github.com/Kim-Junhwan/ImageFeed/internal/logger"
	tools "github.com/Kim-Junhwan/ImageFeed/internal/tools"
	web "github.com/Kim-Junhwan/ImageFeed/internal/web"
)

const daemonBinary = "imagefeed-cache"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Infof("Starting ImageFeed MCP server")

	// Feed pages live in the daemon; start it if needed, then connect.
	kv := connectFeedCache(cfg.CacheSocket)

	disk, err := imagecache.NewDiskCache(cfg.ImageDir(), cfg.DiskBudget)
	if err != nil {
		logger.Errorf("Failed to open disk image cache: %v", err)
		os.Exit(1)
	}
	memory, err := imagecache.NewMemoryCache(cfg.MemoryBudget)
	if err != nil {
		logger.Errorf("Failed to create memory image cache: %v", err)
		os.Exit(1)
	}
	defer memory.Close()
	images := imagecache.NewTieredImageCache(memory, disk, web.NewImageFetcher(cfg.FetchTimeout))
	defer images.Wait()
	logger.Infof("Image cache at %s (memory %s, disk %s)", disk.Dir(),
		humanize.IBytes(uint64(cfg.MemoryBudget)), humanize.IBytes(uint64(cfg.DiskBudget)))

	source := feedSource(cfg, kv)
	pager := feed.NewPaginator(source)

	s := server.NewMCPServer(
		"ImageFeed",
		"0.1.0",
		server.WithRecovery(),
		server.WithToolCapabilities(false),
	)

	toolFeed := mcp.NewTool("feed-page",
		mcp.WithDescription(multiline(
			"Lists photos from the image feed",
			"\nFunctionality:",
			"- Without a page number, returns the next page of the feed",
			"- With a page number, returns that page (pages start at 1)",
			"- Each photo lists its full-size and thumbnail URLs",
			"\nUsage notes:",
			"- Pass a listed URL to image-load to view the image",
			"- Feed pages are cached for a short time",
		)),
		mcp.WithNumber("page", mcp.Description("Page number to read; omit for the next page")),
	)
	s.AddTool(toolFeed, tools.FeedPageHandler(source, pager, images, cfg.Prefetch))

	toolImage := mcp.NewTool("image-load",
		mcp.WithDescription(multiline(
			"Loads an image by URL and returns it",
			"\nUsage notes:",
			"- Images are cached in memory and on disk",
			"- The URL must be a fully-formed http or https URL",
		)),
		mcp.WithString("url", mcp.Required(), mcp.Description("The image URL to load")),
	)
	s.AddTool(toolImage, tools.ImageLoadHandler(images))

	toolClear := mcp.NewTool("image-cache-clear",
		mcp.WithDescription("Removes all cached image data from memory and disk"),
	)
	s.AddTool(toolClear, tools.CacheClearHandler(images))

	toolStats := mcp.NewTool("image-cache-stats",
		mcp.WithDescription("Reports image cache usage and hit counts"),
	)
	s.AddTool(toolStats, tools.CacheStatsHandler(images, disk, cfg.MemoryBudget))
	logger.Infof("Registered feed-page, image-load, image-cache-clear, image-cache-stats")

	logger.Infof("Starting MCP server on stdio")
	if err := server.ServeStdio(s); err != nil {
		logger.Errorf("server error: %v", err)
	}
}

func feedSource(cfg config.Config, kv cache.KV) feed.Source {
	if cfg.UnsplashAccessKey != "" {
		logger.Infof("Using Unsplash feed at %s", cfg.UnsplashBaseURL)
		return web.NewUnsplashClient(web.UnsplashOptions{
			BaseURL:   cfg.UnsplashBaseURL,
			AccessKey: cfg.UnsplashAccessKey,
			PerPage:   cfg.PerPage,
			Timeout:   cfg.FetchTimeout,
			Cache:     kv,
			TTL:       cfg.FeedTTL,
		})
	}
	logger.Infof("Using gallery feed at %s", cfg.GalleryURL)
	return web.NewGalleryScraper(cfg.GalleryURL, cfg.FetchTimeout)
}

// connectFeedCache returns a daemon client, or nil when the daemon cannot be
// reached; feed pages are then always fetched.
func connectFeedCache(sock string) cache.KV {
	client := cache.NewClient(sock)
	logger.Infof("Attempting to connect to cache daemon at %s", sock)
	err := client.Ping()
	if err == nil {
		return client
	}
	logger.Warnf("Failed to connect to cache daemon: %v, attempting to start daemon", err)

	if err := startCacheDaemon(); err != nil {
		logger.Errorf("Failed to start cache daemon: %v", err)
		return nil
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if client.Ping() == nil {
			logger.Infof("Successfully connected to cache daemon")
			return client
		}
		time.Sleep(200 * time.Millisecond)
	}
	logger.Warnf("Cache daemon did not come up; feed pages will not be cached")
	return nil
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

func startCacheDaemon() error {
	candidates := []string{}
	if exePath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exePath), daemonBinary))
	}
	if path, err := exec.LookPath(daemonBinary); err == nil {
		candidates = append(candidates, path)
	}
	candidates = append(candidates, "./"+daemonBinary)

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cmd := exec.Command(path)
		cmd.Env = os.Environ()
		return cmd.Start()
	}
	return exec.ErrNotFound
}
