package imagecache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Kim-Junhwan/ImageFeed/internal/logger"
)

// DefaultDiskBudget is the total size allowed for all disk entries.
const DefaultDiskBudget int64 = 200 * 1024 * 1024

const tempPattern = ".incoming-*"

// DiskCache stores opaque byte blobs as files in a single directory and keeps
// their total size under a budget by evicting the least recently accessed
// files first. Recency is the file modification time, bumped on every Load.
//
// It is safe for concurrent use. Writes, eviction, ClearAll and the access
// time bump are serialized; reads of file contents may run concurrently.
type DiskCache struct {
	dir    string
	budget int64
	now    func() time.Time

	mu sync.RWMutex
}

// DiskOption configures a DiskCache.
type DiskOption func(*DiskCache)

// WithClock sets the clock used to stamp access times.
func WithClock(now func() time.Time) DiskOption {
	return func(dc *DiskCache) { dc.now = now }
}

type diskEntry struct {
	name    string
	size    int64
	modTime time.Time
}

// NewDiskCache opens (creating if needed) a disk cache rooted at dir.
// A budget <= 0 selects DefaultDiskBudget.
func NewDiskCache(dir string, budget int64, opts ...DiskOption) (*DiskCache, error) {
	if budget <= 0 {
		budget = DefaultDiskBudget
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	dc := &DiskCache{dir: dir, budget: budget, now: time.Now}
	for _, opt := range opts {
		opt(dc)
	}
	return dc, nil
}

// Dir returns the cache directory.
func (dc *DiskCache) Dir() string { return dc.dir }

// Budget returns the configured size budget in bytes.
func (dc *DiskCache) Budget() int64 { return dc.budget }

// Save writes data under key, replacing any previous entry, then evicts
// entries until the directory fits the budget again.
func (dc *DiskCache) Save(key string, data []byte) error {
	name, err := fileName(key)
	if err != nil {
		return storageErr("save", key, err)
	}

	dc.mu.Lock()
	defer dc.mu.Unlock()

	if err := dc.writeFile(name, data); err != nil {
		return storageErr("save", key, err)
	}
	return dc.enforceBudget()
}

// Load returns the bytes stored under key. ok is false when there is no
// entry, including when the file vanished mid-read because of a concurrent
// eviction or clear.
func (dc *DiskCache) Load(key string) (data []byte, ok bool, err error) {
	name, err := fileName(key)
	if err != nil {
		return nil, false, storageErr("load", key, err)
	}
	path := filepath.Join(dc.dir, name)

	dc.mu.RLock()
	data, err = os.ReadFile(path)
	dc.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, storageErr("load", key, err)
	}

	// Best-effort recency bump.
	dc.mu.Lock()
	now := dc.now()
	_ = os.Chtimes(path, now, now)
	dc.mu.Unlock()

	return data, true, nil
}

// ClearAll removes every entry. It keeps going after individual failures and
// returns the last one.
func (dc *DiskCache) ClearAll() error {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	children, err := os.ReadDir(dc.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return storageErr("clear", "", os.MkdirAll(dc.dir, 0o755))
		}
		return storageErr("clear", "", err)
	}

	var lastErr error
	for _, child := range children {
		if err := os.RemoveAll(filepath.Join(dc.dir, child.Name())); err != nil {
			lastErr = err
		}
	}
	if lastErr != nil {
		logger.Warnf("disk cache clear incomplete: %v", lastErr)
	}
	return storageErr("clear", "", lastErr)
}

// Usage returns the total size of all entries in bytes.
func (dc *DiskCache) Usage() (int64, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	entries, err := dc.list()
	if err != nil {
		return 0, storageErr("list", "", err)
	}
	return totalSize(entries), nil
}

// Len returns the number of entries.
func (dc *DiskCache) Len() (int, error) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	entries, err := dc.list()
	if err != nil {
		return 0, storageErr("list", "", err)
	}
	return len(entries), nil
}

// writeFile writes to a temp file then renames it over the target so
// concurrent readers see either the old or the new content.
func (dc *DiskCache) writeFile(name string, data []byte) error {
	if err := os.MkdirAll(dc.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dc.dir, tempPattern)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	path := filepath.Join(dc.dir, name)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	now := dc.now()
	return os.Chtimes(path, now, now)
}

// enforceBudget deletes the oldest-accessed entries until the cumulative
// freed size strictly exceeds the overage. Caller holds dc.mu.
func (dc *DiskCache) enforceBudget() error {
	entries, err := dc.list()
	if err != nil {
		return storageErr("evict", "", err)
	}
	total := totalSize(entries)
	if total <= dc.budget {
		return nil
	}
	overage := total - dc.budget

	victims := selectVictims(entries, overage)
	var lastErr error
	var freed int64
	for _, e := range victims {
		if err := os.Remove(filepath.Join(dc.dir, e.name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			lastErr = err
			continue
		}
		freed += e.size
	}
	logger.Debugf("disk cache evicted %d entries (%s) to fit %s",
		len(victims), humanize.IBytes(uint64(freed)), humanize.IBytes(uint64(dc.budget)))
	return storageErr("evict", "", lastErr)
}

// selectVictims returns the smallest prefix of entries, ordered by access
// time ascending, whose total size exceeds overage. Ties keep listing order.
func selectVictims(entries []diskEntry, overage int64) []diskEntry {
	sorted := make([]diskEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].modTime.Before(sorted[j].modTime)
	})

	var sum int64
	for i, e := range sorted {
		sum += e.size
		if sum > overage {
			return sorted[:i+1]
		}
	}
	return sorted
}

// list returns all regular files in the cache directory. Files whose metadata
// cannot be read get a zero size and the zero time, so they sort first.
func (dc *DiskCache) list() ([]diskEntry, error) {
	children, err := os.ReadDir(dc.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]diskEntry, 0, len(children))
	for _, child := range children {
		if child.IsDir() {
			continue
		}
		e := diskEntry{name: child.Name()}
		if info, err := child.Info(); err == nil {
			e.size = info.Size()
			e.modTime = info.ModTime()
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func totalSize(entries []diskEntry) int64 {
	var n int64
	for _, e := range entries {
		n += e.size
	}
	return n
}
