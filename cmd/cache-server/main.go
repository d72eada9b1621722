package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Kim-Junhwan/ImageFeed/internal/cache"
	"github.com/Kim-Junhwan/ImageFeed/internal/config"
	"github.com/Kim-Junhwan/ImageFeed/internal/logger"
)

const purgeInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.LogPath, cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Close()

	// Ensure socket dir exists and remove stale socket
	_ = os.MkdirAll(filepath.Dir(cfg.CacheSocket), 0o755)
	_ = os.Remove(cfg.CacheSocket)

	l, err := net.Listen("unix", cfg.CacheSocket)
	if err != nil {
		logger.Errorf("cache daemon listen on %s: %v", cfg.CacheSocket, err)
		os.Exit(1)
	}
	_ = os.Chmod(cfg.CacheSocket, 0o600)

	store, err := cache.Open(cfg.CacheDB, cache.Options{Bucket: "feed", DefaultTTL: cfg.FeedTTL})
	if err != nil {
		l.Close()
		logger.Errorf("cache daemon open %s: %v", cfg.CacheDB, err)
		os.Exit(1)
	}
	defer store.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		l.Close()
	}()

	done := make(chan struct{})
	defer close(done)
	go purgeLoop(store, done)

	logger.Infof("cache daemon serving %s on %s", cfg.CacheDB, cfg.CacheSocket)
	if err := cache.Serve(l, store); err != nil {
		logger.Errorf("cache daemon: %v", err)
	}
	logger.Infof("cache daemon stopped")
}

func purgeLoop(store *cache.Store, done <-chan struct{}) {
	t := time.NewTicker(purgeInterval)
	defer t.Stop()
	for {
		select {
		case <-done:
			return
		case <-t.C:
			n, err := store.Purge()
			if err != nil {
				logger.Warnf("purge expired feed pages: %v", err)
				continue
			}
			if n > 0 {
				logger.Debugf("purged %d expired feed pages", n)
			}
		}
	}
}
