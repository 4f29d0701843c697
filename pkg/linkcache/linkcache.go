package linkcache

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/arthur-debert/dodex/pkg/logging"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SchemaVersion is bumped whenever the stored target format changes.
const SchemaVersion = 1

// Cache stores the raw link targets of vault files in SQLite.
type Cache struct {
	mu   sync.Mutex
	conn *sql.DB
	path string
}

// Open opens or creates the cache database at path. A database written with
// another schema version is cleared.
func Open(path string) (*Cache, error) {
	logger := logging.GetLogger("linkcache.open").With().Str("path", path).Logger()

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrDirCreate, "cannot create cache directory")
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrLinkCache, "cannot open link cache")
	}
	conn.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, errors.Wrapf(err, errors.ErrLinkCache, "cannot set %s", pragma)
		}
	}

	c := &Cache{conn: conn, path: path}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Debug().Msg("Link cache ready")
	return c, nil
}

func (c *Cache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS links (
			path TEXT PRIMARY KEY,
			mtime INTEGER NOT NULL,
			size INTEGER NOT NULL,
			targets TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := c.conn.Exec(stmt); err != nil {
			return errors.Wrapf(err, errors.ErrLinkCache, "cannot create link cache schema")
		}
	}

	var stored string
	err := c.conn.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return errors.Wrapf(err, errors.ErrLinkCache, "cannot read link cache version")
	case stored == strconv.Itoa(SchemaVersion):
		return nil
	default:
		logger := logging.GetLogger("linkcache.migrate")
		logger.Info().Str("stored", stored).Int("current", SchemaVersion).Msg("Clearing link cache of an older version")
		if _, err := c.conn.Exec(`DELETE FROM links`); err != nil {
			return errors.Wrapf(err, errors.ErrLinkCache, "cannot clear link cache")
		}
	}

	_, err = c.conn.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(SchemaVersion),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkCache, "cannot write link cache version")
	}
	return nil
}

// Path returns the database location.
func (c *Cache) Path() string { return c.path }

// Get returns the targets stored for path when mtime and size still match.
func (c *Cache) Get(path string, mtime, size int64) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var targets string
	err := c.conn.QueryRow(
		`SELECT targets FROM links WHERE path = ? AND mtime = ? AND size = ?`,
		path, mtime, size,
	).Scan(&targets)
	if err != nil {
		if err != sql.ErrNoRows {
			logger := logging.GetLogger("linkcache.get")
			logger.Warn().Err(err).Str("path", path).Msg("Link cache lookup failed")
		}
		return nil, false
	}
	if targets == "" {
		return []string{}, true
	}
	return strings.Split(targets, "\n"), true
}

// Put stores targets for path.
func (c *Cache) Put(path string, mtime, size int64, targets []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.conn.Exec(
		`INSERT INTO links (path, mtime, size, targets) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET mtime = excluded.mtime, size = excluded.size, targets = excluded.targets`,
		path, mtime, size, strings.Join(targets, "\n"),
	)
	if err != nil {
		return errors.Wrapf(err, errors.ErrLinkCache, "cannot cache links of %q", path)
	}
	return nil
}

// Prune removes entries whose path no longer exists and returns how many.
func (c *Cache) Prune(exists func(path string) bool) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.conn.Query(`SELECT path FROM links`)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot list link cache")
	}
	var stale []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot list link cache")
		}
		if !exists(p) {
			stale = append(stale, p)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot list link cache")
	}

	tx, err := c.conn.Begin()
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot prune link cache")
	}
	for _, p := range stale {
		if _, err := tx.Exec(`DELETE FROM links WHERE path = ?`, p); err != nil {
			_ = tx.Rollback()
			return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot prune link cache")
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrapf(err, errors.ErrLinkCache, "cannot prune link cache")
	}
	return len(stale), nil
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int
	if err := c.conn.QueryRow(`SELECT COUNT(*) FROM links`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
