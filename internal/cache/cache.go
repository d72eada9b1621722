package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	bolt "go.etcd.io/bbolt"
)

// Store is the persistent KV behind the daemon. Values are zstd-compressed
// and prefixed with their expiry.
type Store struct {
	db         *bolt.DB
	bucket     []byte
	defaultTTL time.Duration
	now        func() time.Time

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	mu sync.RWMutex
}

type Options struct {
	// Bucket is the name of the Bolt bucket to use.
	Bucket string
	// DefaultTTL is used when Put is called with ttl <= 0.
	DefaultTTL time.Duration
	// Now overrides the clock, for tests.
	Now func() time.Time
}

var (
	ErrNotFound = errors.New("cache: not found")
	ErrExpired  = errors.New("cache: expired")
)

// headerLen is the size of the big-endian expiry prefix.
const headerLen = 8

// Open initializes or opens a Store at the given path.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	bucket := []byte("feed")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		_ = db.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		db:         db,
		bucket:     bucket,
		defaultTTL: opts.DefaultTTL,
		now:        now,
		encoder:    enc,
		decoder:    dec,
	}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.decoder.Close()
	_ = s.encoder.Close()
	return s.db.Close()
}

// Put stores value until now+ttl. If ttl <= 0, DefaultTTL is used; if
// DefaultTTL <= 0, the item never expires.
func (s *Store) Put(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	var expiresAt int64
	if ttl > 0 {
		expiresAt = s.now().Add(ttl).Unix()
	}

	buf := make([]byte, headerLen, headerLen+len(value))
	binary.BigEndian.PutUint64(buf, uint64(expiresAt))
	buf = s.encoder.EncodeAll(value, buf)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf)
	})
}

// Get returns the value if present and not expired.
func (s *Store) Get(key string) ([]byte, error) {
	var raw []byte
	s.mu.RLock()
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucket).Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	if len(raw) < headerLen {
		return nil, fmt.Errorf("cache: corrupt entry %q", key)
	}
	if s.expired(raw) {
		return nil, ErrExpired
	}
	out, err := s.decoder.DecodeAll(raw[headerLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return out, nil
}

// Delete removes a key.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

// Purge deletes expired and unreadable entries and returns how many it removed.
func (s *Store) Purge() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		if err := b.ForEach(func(k, v []byte) error {
			if len(v) < headerLen || s.expired(v) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		}); err != nil {
			return err
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

func (s *Store) expired(raw []byte) bool {
	expiresAt := int64(binary.BigEndian.Uint64(raw[:headerLen]))
	return expiresAt > 0 && s.now().Unix() > expiresAt
}
