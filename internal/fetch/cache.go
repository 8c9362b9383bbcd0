package fetch

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cache stores raw fetched payloads keyed by query signature. A hit skips
// the network entirely. Implementations must treat corruption or I/O failure
// as a miss, never as a fatal error.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, payload []byte)
}

// Key hashes normalized query parameters into a deterministic cache key.
func Key(parts ...string) string {
	norm := make([]string, len(parts))
	for i, p := range parts {
		norm[i] = strings.ToLower(strings.TrimSpace(p))
	}
	h := sha256.Sum256([]byte(strings.Join(norm, "|")))
	return fmt.Sprintf("%x", h)
}

// DiskCache keeps one file per query signature under a directory; entry age
// comes from file mtime, so there is no explicit expiry field to maintain.
type DiskCache struct {
	dir string
	ttl time.Duration
}

// NewDiskCache creates the cache directory if needed. TTL <= 0 disables
// expiry.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Warn("cache: create dir failed, entries will miss", zap.String("dir", dir), zap.Error(err))
	}
	return &DiskCache{dir: dir, ttl: ttl}
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Get returns the cached payload when present and unexpired.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	p := c.path(key)
	info, err := os.Stat(p)
	if err != nil {
		return nil, false
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		zap.L().Debug("cache: read failed, treating as miss", zap.String("key", shortKey(key)), zap.Error(err))
		return nil, false
	}
	zap.L().Debug("cache hit", zap.String("key", shortKey(key)))
	return data, true
}

// Set writes through on success; failures are logged and ignored.
func (c *DiskCache) Set(key string, payload []byte) {
	if err := os.WriteFile(c.path(key), payload, 0o644); err != nil {
		zap.L().Warn("cache: write failed", zap.String("key", shortKey(key)), zap.Error(err))
	}
}

// Purge removes every entry. Used by the cache maintenance command.
func (c *DiskCache) Purge() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats reports entry count and total size on disk.
func (c *DiskCache) Stats() (entries int, bytes int64) {
	list, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range list {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		entries++
		if info, err := e.Info(); err == nil {
			bytes += info.Size()
		}
	}
	return entries, bytes
}

// MemoryCache is an in-process Cache used in tests and as a last-resort
// fallback when no cache directory is usable.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
}

type memEntry struct {
	payload []byte
	written time.Time
}

// NewMemoryCache returns an empty in-memory cache. TTL <= 0 disables expiry.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl, entries: map[string]memEntry{}}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(e.written) > c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.payload, true
}

func (c *MemoryCache) Set(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{payload: payload, written: time.Now()}
}

func shortKey(key string) string {
	if len(key) > 12 {
		return key[:12]
	}
	return key
}
