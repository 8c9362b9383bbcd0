package fetch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Deterministic(t *testing.T) {
	assert.Equal(t, Key("opendata", "2026-01-01", "2026-02-01"), Key("opendata", "2026-01-01", "2026-02-01"))
	assert.NotEqual(t, Key("opendata", "2026-01-01"), Key("opendata", "2026-01-02"))
}

func TestKey_NormalizesCaseAndSpace(t *testing.T) {
	assert.Equal(t, Key("CROL", " Glen Walker "), Key("crol", "glen walker"))
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	key := Key("test", "a")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []byte("payload"))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), got)
}

func TestDiskCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Minute)
	key := Key("test", "stale")
	c.Set(key, []byte("old"))

	// Age the entry past the TTL via mtime.
	past := time.Now().Add(-2 * time.Minute)
	require.NoError(t, os.Chtimes(filepath.Join(dir, key+".json"), past, past))

	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestDiskCache_ZeroTTLNeverExpires(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, 0)
	key := Key("test", "keep")
	c.Set(key, []byte("data"))

	past := time.Now().Add(-24 * 365 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, key+".json"), past, past))

	_, ok := c.Get(key)
	assert.True(t, ok)
}

func TestDiskCache_PurgeAndStats(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)
	c.Set(Key("a"), []byte("one"))
	c.Set(Key("b"), []byte("two"))

	entries, bytes := c.Stats()
	assert.Equal(t, 2, entries)
	assert.Equal(t, int64(6), bytes)

	removed, err := c.Purge()
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, _ = c.Stats()
	assert.Zero(t, entries)
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	key := Key("mem")

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, []byte("v"))
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(10 * time.Millisecond)
	key := Key("mem", "stale")
	c.Set(key, []byte("v"))

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get(key)
	assert.False(t, ok)
}
