package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/civic-atlas/appointments-watch/internal/fetch"
	"github.com/civic-atlas/appointments-watch/internal/normalize"
)

var rulesPath string

// loadNormalizer builds the normalizer from the built-in dictionaries plus
// the optional rules file (--rules flag wins over the config entry).
func loadNormalizer() (*normalize.Normalizer, error) {
	path := rulesPath
	if path == "" {
		path = cfg.Rules.Path
	}
	if path == "" {
		return normalize.New(normalize.DefaultRules()), nil
	}

	rules, err := normalize.LoadRules(path)
	if err != nil {
		return nil, eris.Wrap(err, "load rules")
	}
	return normalize.New(rules), nil
}

// closerCache pairs a Cache with an optional close func for the sqlite
// backend.
type closerCache struct {
	fetch.Cache
	close func() error
}

func (c closerCache) Close() {
	if c.close != nil {
		_ = c.close()
	}
}

// initCache builds the configured cache backend. Any construction failure
// degrades to an in-memory cache; the cache is an optimization, never a
// reason to abort a run.
func initCache() closerCache {
	ttl := cfg.Fetch.CacheTTL()

	switch cfg.Fetch.CacheBackend {
	case "sqlite":
		c, err := fetch.NewSQLiteCache(cfg.Fetch.CacheDSN, ttl)
		if err != nil {
			zap.L().Warn("sqlite cache unavailable, using memory cache", zap.Error(err))
			return closerCache{Cache: fetch.NewMemoryCache(ttl)}
		}
		return closerCache{Cache: c, close: c.Close}
	case "memory":
		return closerCache{Cache: fetch.NewMemoryCache(ttl)}
	default:
		return closerCache{Cache: fetch.NewDiskCache(cfg.Fetch.CacheDir, ttl)}
	}
}

// initLimiter builds the run-scoped request limiter.
func initLimiter() *fetch.Limiter {
	return fetch.NewLimiter(cfg.Fetch.MinDelay(), cfg.Fetch.MaxRequests)
}
