// Package cache stores rendered documents keyed by a fingerprint of
// everything that determines their bytes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// keyPrefix changes whenever the entry format does
const keyPrefix = "mathsheet:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// CacheKey hashes a document fingerprint into a cache key
func CacheKey(fingerprint string) string {
	hash := sha256.Sum256([]byte(fingerprint))
	return keyPrefix + hex.EncodeToString(hash[:])
}

// Options selects the layers New builds
type Options struct {
	MemoryTTL time.Duration
	Dir       string // Empty disables the disk layer
	DiskTTL   time.Duration
}

// New builds a memory cache, or a memory+disk cache when opts.Dir is set
func New(opts Options) Cache {
	if opts.Dir == "" {
		return NewMemoryCache(opts.MemoryTTL, cleanupInterval(opts.MemoryTTL))
	}
	return NewLayeredCache(opts.MemoryTTL, opts.Dir, opts.DiskTTL)
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 || ttl > 10*time.Minute {
		return 10 * time.Minute
	}
	return ttl
}
