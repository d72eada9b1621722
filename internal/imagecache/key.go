package imagecache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// maxNameLen keeps file names under the 255-byte limit of common filesystems.
const maxNameLen = 200

// keyReplacer maps characters that are unsafe in a file name to '_'.
// URLs differing only in these characters share a file.
var keyReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"?", "_",
	"*", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"\x00", "_",
)

// CacheKey derives the cache key for an image URL.
func CacheKey(rawURL string) string { return strings.TrimSpace(rawURL) }

// SanitizeKey turns a cache key into a file name. Long keys keep a readable
// prefix followed by a hash of the whole key.
func SanitizeKey(key string) string {
	name := keyReplacer.Replace(key)
	if len(name) <= maxNameLen {
		return name
	}
	sum := sha256.Sum256([]byte(key))
	return name[:maxNameLen-33] + "-" + hex.EncodeToString(sum[:16])
}

func fileName(key string) (string, error) {
	name := SanitizeKey(key)
	if name == "" || name == "." || name == ".." {
		return "", ErrInvalidKey
	}
	return name, nil
}
