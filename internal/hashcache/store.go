package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages digest persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Key identifies one version of a file's content.
type Key struct {
	Path      string
	Size      int64
	ModTimeNS int64
	Algorithm string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection keeps the pragmas below in force for every statement;
	// other hash processes sharing the file are handled by busy_timeout.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Lookup returns the stored digest for key. ok is false when nothing is stored
// or the stored entry describes a different size or modification time.
func (s *Store) Lookup(ctx context.Context, key Key) (string, bool, error) {
	var (
		size, mtime int64
		digest      string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT size, mtime_ns, digest FROM digests WHERE path = ? AND algorithm = ?`,
			key.Path, key.Algorithm,
		).Scan(&size, &mtime, &digest)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup digest: %w", err)
	}
	if size != key.Size || mtime != key.ModTimeNS {
		return "", false, nil
	}
	return digest, true, nil
}

// Put records digest for key, replacing any earlier entry for the same path
// and algorithm.
func (s *Store) Put(ctx context.Context, key Key, digest string) error {
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO digests (path, algorithm, size, mtime_ns, digest, stored_at)
             VALUES (?, ?, ?, ?, ?, ?)
             ON CONFLICT (path, algorithm) DO UPDATE SET
                 size = excluded.size, mtime_ns = excluded.mtime_ns,
                 digest = excluded.digest, stored_at = excluded.stored_at`,
			key.Path, key.Algorithm, key.Size, key.ModTimeNS, digest,
			time.Now().UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("store digest: %w", err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM digests`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count digests: %w", err)
	}
	return n, nil
}
