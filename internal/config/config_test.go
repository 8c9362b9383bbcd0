package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "registry.csv", cfg.Registry.Path)
	assert.Equal(t, "https://data.cityofnewyork.us", cfg.Feed.BaseURL)
	assert.Equal(t, 1000, cfg.Feed.PageSize)
	assert.Equal(t, "personnel-changes", cfg.CROL.SectionID)
	assert.Equal(t, "disk", cfg.Fetch.CacheBackend)
	assert.Equal(t, 200, cfg.Fetch.MaxRequests)
	assert.Equal(t, 60, cfg.Scan.LookbackDays)
	assert.Equal(t, 365, cfg.Departure.LookbackDays)
	assert.Equal(t, 1, cfg.Departure.Concurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APPWATCH_SCAN_MIN_SCORE", "42")
	t.Setenv("APPWATCH_FETCH_CACHE_BACKEND", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Scan.MinScore)
	assert.Equal(t, "sqlite", cfg.Fetch.CacheBackend)
}

func TestFetchConfig_DurationHelpers(t *testing.T) {
	f := FetchConfig{MinDelayMS: 1500, CacheTTLHours: 24}

	assert.Equal(t, 1500*time.Millisecond, f.MinDelay())
	assert.Equal(t, 24*time.Hour, f.CacheTTL())
}

func TestInitLogger_BadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "not-a-level", Format: "json"})
	assert.Error(t, err)
}
