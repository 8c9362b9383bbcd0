package fetch

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteCache stores fetch payloads in a single SQLite file. It is the
// backend of choice when many small query signatures would otherwise litter
// a cache directory.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

const sqliteCacheSchema = `
CREATE TABLE IF NOT EXISTS fetch_cache (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT (datetime('now'))
);`

// NewSQLiteCache opens (creating if needed) the cache database at dsn and
// configures WAL mode. TTL <= 0 disables expiry.
func NewSQLiteCache(dsn string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: open sqlite cache")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "fetch: exec %s", pragma)
		}
	}
	if _, err := db.Exec(sqliteCacheSchema); err != nil {
		db.Close()
		return nil, eris.Wrap(err, "fetch: migrate cache schema")
	}
	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Get returns the cached payload when present and unexpired. Any database
// error is a miss.
func (c *SQLiteCache) Get(key string) ([]byte, bool) {
	query := `SELECT payload FROM fetch_cache WHERE key = ?`
	args := []any{key}
	if c.ttl > 0 {
		query += ` AND fetched_at > datetime('now', ?)`
		args = append(args, sqliteTTLModifier(c.ttl))
	}

	var payload []byte
	if err := c.db.QueryRow(query, args...).Scan(&payload); err != nil {
		if err != sql.ErrNoRows {
			zap.L().Debug("cache: sqlite read failed, treating as miss", zap.String("key", shortKey(key)), zap.Error(err))
		}
		return nil, false
	}
	zap.L().Debug("cache hit", zap.String("key", shortKey(key)))
	return payload, true
}

// Set upserts the payload, refreshing fetched_at. Failures are non-fatal.
func (c *SQLiteCache) Set(key string, payload []byte) {
	_, err := c.db.Exec(`
		INSERT INTO fetch_cache (key, payload, fetched_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT (key) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		key, payload,
	)
	if err != nil {
		zap.L().Warn("cache: sqlite write failed", zap.String("key", shortKey(key)), zap.Error(err))
	}
}

// Purge deletes every entry and returns how many were removed.
func (c *SQLiteCache) Purge() (int, error) {
	res, err := c.db.Exec(`DELETE FROM fetch_cache`)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: purge sqlite cache")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats reports entry count and total payload size.
func (c *SQLiteCache) Stats() (entries int, bytes int64) {
	_ = c.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(LENGTH(payload)), 0) FROM fetch_cache`).Scan(&entries, &bytes)
	return entries, bytes
}

// Close releases the database handle.
func (c *SQLiteCache) Close() error { return c.db.Close() }

// sqliteTTLModifier renders a negative seconds offset for datetime().
func sqliteTTLModifier(ttl time.Duration) string {
	return fmt.Sprintf("-%d seconds", int64(ttl.Seconds()))
}
