package imagecache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Kim-Junhwan/ImageFeed/internal/logger"
)

// Fetcher retrieves the bytes behind a URL from the network.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// DiskStore is the persistent tier. DiskCache implements it.
type DiskStore interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, bool, error)
	ClearAll() error
}

// Stats counts lookups per tier.
type Stats struct {
	MemoryHits    int64
	DiskHits      int64
	DiskErrors    int64
	NetworkLoads  int64
	NetworkErrors int64
	WriteFailures int64
	MemoryEntries int
	MemoryBytes   int64
}

// TieredImageCache serves image bytes from memory, then disk, then the
// network. Network results are returned right away; the disk write happens
// in the background and its failure is only logged.
type TieredImageCache struct {
	memory  *MemoryCache
	disk    DiskStore
	fetcher Fetcher

	flight singleflight.Group
	writes sync.WaitGroup

	// clearMu orders Clear against cache fills: fills hold the read side
	// and drop their result when generation moved on since the fetch began.
	clearMu    sync.RWMutex
	generation atomic.Uint64

	memoryHits    atomic.Int64
	diskHits      atomic.Int64
	diskErrors    atomic.Int64
	networkLoads  atomic.Int64
	networkErrors atomic.Int64
	writeFailures atomic.Int64
}

// NewTieredImageCache wires the three tiers together.
func NewTieredImageCache(memory *MemoryCache, disk DiskStore, fetcher Fetcher) *TieredImageCache {
	return &TieredImageCache{memory: memory, disk: disk, fetcher: fetcher}
}

// LoadImageData returns the bytes for rawURL. Fetch errors and the caller's
// own context error are returned; cache faults degrade to a miss.
func (c *TieredImageCache) LoadImageData(ctx context.Context, rawURL string) ([]byte, error) {
	key := CacheKey(rawURL)
	if key == "" {
		return nil, fmt.Errorf("empty image url")
	}

	if data, ok := c.memory.Get(key); ok {
		c.memoryHits.Add(1)
		return data, nil
	}

	gen := c.generation.Load()
	data, ok, err := c.disk.Load(key)
	if err != nil {
		c.diskErrors.Add(1)
		logger.Warnf("disk cache load failed for %s: %v", key, err)
	} else if ok {
		c.diskHits.Add(1)
		c.remember(gen, key, data, false)
		return data, nil
	}

	// Concurrent misses on one key share a single fetch. The fetch is
	// detached from any one caller; each caller stops waiting on its own
	// context, and the fetcher's timeout bounds the download.
	ch := c.flight.DoChan(key, func() (any, error) {
		if data, ok := c.memory.Get(key); ok {
			return data, nil
		}
		fetchGen := c.generation.Load()
		c.networkLoads.Add(1)
		data, err := c.fetcher.Fetch(context.WithoutCancel(ctx), key)
		if err != nil {
			c.networkErrors.Add(1)
			return nil, err
		}
		c.remember(fetchGen, key, data, true)
		return data, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		data := res.Val.([]byte)
		if res.Shared {
			data = clone(data)
		}
		return data, nil
	}
}

// Prefetch warms the cache for urls with at most limit concurrent loads and
// returns the first failure.
func (c *TieredImageCache) Prefetch(ctx context.Context, urls []string, limit int) error {
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, u := range urls {
		g.Go(func() error {
			_, err := c.LoadImageData(ctx, u)
			return err
		})
	}
	return g.Wait()
}

// Clear empties the memory tier and asks the disk tier to clear itself.
// Fetches still running when Clear is called do not repopulate either tier.
func (c *TieredImageCache) Clear() {
	c.clearMu.Lock()
	defer c.clearMu.Unlock()

	c.generation.Add(1)
	c.memory.Clear()
	if err := c.disk.ClearAll(); err != nil {
		logger.Warnf("disk cache clear failed: %v", err)
	}
}

// Wait blocks until background disk writes have finished.
func (c *TieredImageCache) Wait() { c.writes.Wait() }

// Stats returns a snapshot of the counters.
func (c *TieredImageCache) Stats() Stats {
	return Stats{
		MemoryHits:    c.memoryHits.Load(),
		DiskHits:      c.diskHits.Load(),
		DiskErrors:    c.diskErrors.Load(),
		NetworkLoads:  c.networkLoads.Load(),
		NetworkErrors: c.networkErrors.Load(),
		WriteFailures: c.writeFailures.Load(),
		MemoryEntries: c.memory.Len(),
		MemoryBytes:   c.memory.Size(),
	}
}

// remember stores data in memory and, when persist is set, schedules the
// disk write. Nothing is stored if a Clear happened since gen was read.
func (c *TieredImageCache) remember(gen uint64, key string, data []byte, persist bool) {
	c.clearMu.RLock()
	defer c.clearMu.RUnlock()
	if c.generation.Load() != gen {
		return
	}
	c.memory.Set(key, data)
	if persist {
		c.saveInBackground(gen, key, clone(data))
	}
}

func (c *TieredImageCache) saveInBackground(gen uint64, key string, data []byte) {
	c.writes.Add(1)
	go func() {
		defer c.writes.Done()
		defer func() {
			if p := recover(); p != nil {
				c.writeFailures.Add(1)
				logger.Errorf("disk cache save panicked for %s: %v", key, p)
			}
		}()

		c.clearMu.RLock()
		defer c.clearMu.RUnlock()
		if c.generation.Load() != gen {
			return
		}
		if err := c.disk.Save(key, data); err != nil {
			c.writeFailures.Add(1)
			logger.Warnf("disk cache save failed for %s: %v", key, err)
		}
	}()
}
