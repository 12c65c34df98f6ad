package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on kv.updated_at
const currentSchemaVersion = 1

// ErrChecksumMismatch indicates a stored value no longer matches its checksum.
var ErrChecksumMismatch = errors.New("cache value checksum mismatch")

// Cache is a durable string-keyed store of text values.
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// Entry describes a stored slot without its value.
type Entry struct {
	Key       string    `json:"key"`
	Revision  string    `json:"revision"`
	Checksum  string    `json:"checksum"`
	Size      int       `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the clock used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

// Open creates or opens a SQLite cache file at the given path, creating its
// directory if needed. Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	c := &Cache{db: db, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns the value stored under key. ok is false when the slot is empty.
// A value whose checksum does not match returns ErrChecksumMismatch.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	var value, checksum string
	err := c.db.QueryRowContext(ctx,
		`SELECT value, checksum FROM kv WHERE key = ?`, key,
	).Scan(&value, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	if sum(value) != checksum {
		return "", false, fmt.Errorf("get %q: %w", key, ErrChecksumMismatch)
	}
	return value, true, nil
}

// Put replaces the value stored under key.
func (c *Cache) Put(ctx context.Context, key, value string) error {
	rev, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("put %q: revision: %w", key, err)
	}
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, checksum, revision, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			checksum = excluded.checksum,
			revision = excluded.revision,
			updated_at = excluded.updated_at
	`,
		key,
		value,
		sum(value),
		rev.String(),
		c.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

// Delete empties the slot. Deleting an empty slot is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Stat returns the metadata of a slot. ok is false when the slot is empty.
func (c *Cache) Stat(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e         Entry
		updatedAt string
	)
	err := c.db.QueryRowContext(ctx,
		`SELECT key, revision, checksum, length(value), updated_at FROM kv WHERE key = ?`, key,
	).Scan(&e.Key, &e.Revision, &e.Checksum, &e.Size, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("stat %q: %w", key, err)
	}
	e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return Entry{}, false, fmt.Errorf("stat %q: parse updated_at: %w", key, err)
	}
	return e, true, nil
}

func sum(value string) string {
	h := sha256.Sum256([]byte(value))
	return hex.EncodeToString(h[:])
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_kv_updated_at ON kv(updated_at)`); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (c *Cache) verifyPragma(name, expected string) error {
	var value string
	if err := c.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
