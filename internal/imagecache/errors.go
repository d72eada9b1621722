package imagecache

import (
	"errors"
	"fmt"
)

// ErrInvalidKey is returned for keys that cannot name a file in the cache directory.
var ErrInvalidKey = errors.New("imagecache: invalid key")

// StorageError reports a disk cache I/O failure.
type StorageError struct {
	Op  string // "save", "load", "evict", "clear", "list"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("imagecache: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("imagecache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Key: key, Err: err}
}
