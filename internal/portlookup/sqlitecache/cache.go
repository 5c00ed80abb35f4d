package sqlitecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"bkcnorm/internal/normalize"
	"bkcnorm/internal/port"
)

const schema = `
CREATE TABLE IF NOT EXISTS port_codes (
  description TEXT NOT NULL,
  country_code TEXT NOT NULL,
  port_code TEXT NOT NULL,
  resolved_at INTEGER NOT NULL,
  PRIMARY KEY (description, country_code)
);
`

// Cache is a port.PortResolver backed by a SQLite table. Misses and expired
// entries fall through to the wrapped resolver; only successful lookups are
// stored.
type Cache struct {
	db     *sql.DB
	next   port.PortResolver
	ttl    time.Duration
	logger *zap.Logger
}

// Open opens (or creates) the cache database at path in front of next. A zero
// ttl keeps entries forever.
func Open(path string, next port.PortResolver, ttl time.Duration, logger *zap.Logger) (*Cache, error) {
	if next == nil {
		return nil, errors.New("sqlite cache: next resolver is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configuring cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{db: db, next: next, ttl: ttl, logger: logger.Named("portlookup.cache")}, nil
}

// Resolve returns a cached port code or asks the wrapped resolver.
func (c *Cache) Resolve(ctx context.Context, description, countryCode string) (string, error) {
	key := normalize.FoldKey(description)
	country := strings.ToUpper(strings.TrimSpace(countryCode))

	if code, ok := c.lookup(ctx, key, country); ok {
		return code, nil
	}

	code, err := c.next.Resolve(ctx, description, countryCode)
	if err != nil {
		return "", err
	}
	if err := c.store(ctx, key, country, code); err != nil {
		c.logger.Warn("failed to cache port code",
			zap.String("description", description),
			zap.String("country_code", country),
			zap.Error(err),
		)
	}
	return code, nil
}

func (c *Cache) lookup(ctx context.Context, key, country string) (string, bool) {
	var code string
	var resolvedAt int64
	err := c.db.QueryRowContext(ctx,
		`SELECT port_code, resolved_at FROM port_codes WHERE description = ? AND country_code = ?`,
		key, country,
	).Scan(&code, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		c.logger.Warn("port code cache read failed", zap.Error(err))
		return "", false
	}
	if c.ttl > 0 && time.Since(time.Unix(0, resolvedAt)) > c.ttl {
		return "", false
	}
	return code, true
}

func (c *Cache) store(ctx context.Context, key, country, code string) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO port_codes (description, country_code, port_code, resolved_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(description, country_code) DO UPDATE SET
  port_code = excluded.port_code,
  resolved_at = excluded.resolved_at`,
		key, country, code, time.Now().UnixNano(),
	)
	return err
}

// Len returns the number of cached entries.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM port_codes`).Scan(&n)
	return n, err
}

// Ping checks that the cache database is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
