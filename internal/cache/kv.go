package cache

import "time"

// KV is a byte store with per-entry expiry. The feed client keeps decoded
// photo pages in it. Implementations must be safe for concurrent use.
type KV interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}
