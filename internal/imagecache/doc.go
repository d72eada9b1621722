// Package imagecache serves image bytes by URL through two cache tiers in
// front of a network fetch: a cost-bounded in-memory LRU and a size-bounded
// directory of files evicted by last access time.
//
// Only network errors reach callers of TieredImageCache. Disk faults are
// logged and treated as misses, so a broken disk cache costs latency but
// never correctness.
package imagecache
