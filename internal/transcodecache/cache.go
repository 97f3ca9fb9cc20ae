package transcodecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"sb3slim/internal/logging"
	"sb3slim/internal/services"
	"sb3slim/internal/transcode"
)

const (
	dbFileName   = "transcode.db"
	lockFileName = "transcode.lock"
)

// ErrLocked indicates another process holds the cache directory.
var ErrLocked = errors.New("transcode cache is in use by another process")

// Cache is a SQLite-backed transcode.Store.
type Cache struct {
	db         *sql.DB
	path       string
	lock       *flock.Flock
	codec      Codec
	maxEntries int
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithCodec selects the blob codec for new entries.
func WithCodec(codec Codec) Option {
	return func(c *Cache) { c.codec = codec }
}

// WithMaxEntries bounds the number of stored entries. Zero disables eviction.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n >= 0 {
			c.maxEntries = n
		}
	}
}

// WithClock overrides the time source used for recency tracking.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open creates or opens the cache database in dir and takes the directory
// lock. It returns ErrLocked when another process already holds it.
func Open(ctx context.Context, dir string, opts ...Option) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcodecache", "open", "create cache directory", err)
	}
	c := &Cache{
		path:   filepath.Join(dir, dbFileName),
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		codec:  CodecZstd,
		now:    time.Now,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "transcodecache")

	ok, err := c.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	db, err := sql.Open("sqlite", c.path)
	if err != nil {
		_ = c.lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			_ = c.lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}
	c.db = db
	if err := c.initSchema(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.path
}

// Close releases the database and the directory lock.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.db != nil {
		errs = append(errs, c.db.Close())
		c.db = nil
	}
	if c.lock != nil {
		errs = append(errs, c.lock.Unlock())
	}
	return errors.Join(errs...)
}

// Get returns the stored output for key and marks it as recently used.
func (c *Cache) Get(ctx context.Context, key string) (transcode.Output, bool, error) {
	var (
		ext      string
		duration float64
		codec    int
		size     int
		data     []byte
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT ext, duration_seconds, codec, size, data FROM entries WHERE key = ?", key,
	).Scan(&ext, &duration, &codec, &size, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return transcode.Output{}, false, nil
	}
	if err != nil {
		return transcode.Output{}, false, fmt.Errorf("read cache entry: %w", err)
	}
	payload, err := decode(data, Codec(codec), size)
	if err != nil {
		c.logger.Warn("dropping corrupt cache entry",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldEventType, "cache_corrupt"),
		)
		_, _ = c.db.ExecContext(ctx, "DELETE FROM entries WHERE key = ?", key)
		return transcode.Output{}, false, nil
	}
	if _, err := c.db.ExecContext(ctx,
		"UPDATE entries SET last_used_at = ? WHERE key = ?", c.now().UnixNano(), key,
	); err != nil {
		return transcode.Output{}, false, fmt.Errorf("touch cache entry: %w", err)
	}
	return transcode.Output{
		Data:            payload,
		Ext:             ext,
		Kind:            transcode.KindForPath("x." + ext),
		DurationSeconds: duration,
	}, true, nil
}

// Put stores out under key, replacing any previous entry, then evicts the
// least recently used entries beyond the configured limit.
func (c *Cache) Put(ctx context.Context, key string, out transcode.Output) error {
	stored, codec, err := encode(out.Data, c.codec)
	if err != nil {
		return err
	}
	now := c.now().UnixNano()
	if _, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO entries
			(key, ext, duration_seconds, codec, size, stored_size, data, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key, out.Ext, out.DurationSeconds, int(codec), len(out.Data), len(stored), stored, now, now,
	); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return c.prune(ctx)
}

func (c *Cache) prune(ctx context.Context) error {
	if c.maxEntries <= 0 {
		return nil
	}
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM entries").Scan(&count); err != nil {
		return fmt.Errorf("count cache entries: %w", err)
	}
	excess := count - c.maxEntries
	if excess <= 0 {
		return nil
	}
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM entries WHERE key IN (
			SELECT key FROM entries ORDER BY last_used_at ASC, rowid ASC LIMIT ?
		)`, excess)
	if err != nil {
		return fmt.Errorf("evict cache entries: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		c.logger.Debug("evicted cache entries", logging.Int64("evicted", n))
	}
	return nil
}

// Stats summarizes cache contents.
type Stats struct {
	Path        string `json:"path"`
	Entries     int64  `json:"entries"`
	Bytes       int64  `json:"bytes"`
	StoredBytes int64  `json:"stored_bytes"`
}

// Stats reports entry count and sizes.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: c.path}
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(size), 0), COALESCE(SUM(stored_size), 0) FROM entries",
	).Scan(&stats.Entries, &stats.Bytes, &stats.StoredBytes)
	if err != nil {
		return Stats{}, fmt.Errorf("read cache stats: %w", err)
	}
	return stats, nil
}

// Clear deletes every entry and returns how many were removed.
func (c *Cache) Clear(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, _ := res.RowsAffected()
	if _, err := c.db.ExecContext(ctx, "VACUUM"); err != nil {
		return n, fmt.Errorf("vacuum cache: %w", err)
	}
	return n, nil
}

// Remove deletes the cache database files in dir. It takes the directory lock
// first, so it fails with ErrLocked while a run is using the cache.
func Remove(dir string) error {
	lock := flock.New(filepath.Join(dir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("acquire cache lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	base := filepath.Join(dir, dbFileName)
	for _, name := range []string{base, base + "-wal", base + "-shm"} {
		if err := os.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
