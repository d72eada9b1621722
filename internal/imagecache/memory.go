package imagecache

import (
	"github.com/dgraph-io/ristretto/v2"
)

// DefaultMemoryBudget is the total cost allowed for in-memory entries.
const DefaultMemoryBudget int64 = 50 * 1024 * 1024

// MemoryCache is an in-process cache bounded by the summed byte length of
// its values. Admission and eviction follow ristretto's TinyLFU policy, so
// a Set does not guarantee a later Get hits.
//
// Values are copied on the way in and on the way out; callers may modify
// the slices they pass or receive.
type MemoryCache struct {
	cache    *ristretto.Cache[string, []byte]
	capacity int64
}

// NewMemoryCache returns a cache holding at most capacity bytes.
// A capacity <= 0 selects DefaultMemoryBudget.
func NewMemoryCache(capacity int64) (*MemoryCache, error) {
	if capacity <= 0 {
		capacity = DefaultMemoryBudget
	}
	// Roughly ten counters per expected entry, assuming 1 KiB thumbnails.
	counters := capacity / 1024 * 10
	if counters < 1000 {
		counters = 1000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters:        counters,
		MaxCost:            capacity,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: cache, capacity: capacity}, nil
}

// Get returns a copy of the value for key.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return clone(v), true
}

// Set stores a copy of value under key and waits until the write is
// visible to Get. Values larger than the whole budget are dropped along
// with any previous entry for key.
func (c *MemoryCache) Set(key string, value []byte) {
	cost := int64(len(value))
	if cost > c.capacity {
		c.Delete(key)
		return
	}
	c.cache.Set(key, clone(value), cost)
	c.cache.Wait()
}

// Delete removes key if present.
func (c *MemoryCache) Delete(key string) {
	c.cache.Del(key)
	c.cache.Wait()
}

// Clear drops every entry.
func (c *MemoryCache) Clear() { c.cache.Clear() }

// Len returns the number of entries.
func (c *MemoryCache) Len() int {
	m := c.cache.Metrics
	return int(m.KeysAdded() - m.KeysEvicted())
}

// Size returns the summed cost of all entries.
func (c *MemoryCache) Size() int64 {
	m := c.cache.Metrics
	return int64(m.CostAdded() - m.CostEvicted())
}

// Capacity returns the configured budget.
func (c *MemoryCache) Capacity() int64 { return c.capacity }

// Close stops the cache's background goroutines.
func (c *MemoryCache) Close() { c.cache.Close() }

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}
