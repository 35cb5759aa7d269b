package hashcache

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"hashstage/internal/digest"
	"hashstage/internal/logging"
)

// Digester serves digests from the cache and falls back to inner on a miss.
// Cache errors never fail a digest; the first one is logged and the rest are
// counted.
type Digester struct {
	inner     digest.Digester
	store     *Store
	algorithm string
	logger    *slog.Logger

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

// NewDigester wraps inner, whose digests must use alg.
func NewDigester(inner digest.Digester, store *Store, alg digest.Algorithm, logger *slog.Logger) *Digester {
	return &Digester{
		inner:     inner,
		store:     store,
		algorithm: alg.Prefix(),
		logger:    logging.NewComponentLogger(logger, "hashcache"),
	}
}

// Digest implements digest.Digester.
func (d *Digester) Digest(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return d.inner.Digest(path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return d.inner.Digest(path)
	}
	key := Key{Path: abs, Size: info.Size(), ModTimeNS: info.ModTime().UnixNano(), Algorithm: d.algorithm}

	ctx := context.Background()
	if sum, ok, err := d.store.Lookup(ctx, key); err != nil {
		d.fail("lookup", err)
	} else if ok {
		d.hits.Add(1)
		return sum, nil
	}

	d.misses.Add(1)
	sum, err := d.inner.Digest(path)
	if err != nil {
		return "", err
	}
	// A file rewritten while it was read must not be cached under the old
	// size and mtime.
	after, err := os.Stat(path)
	if err != nil || after.Size() != key.Size || after.ModTime().UnixNano() != key.ModTimeNS {
		return sum, nil
	}
	if err := d.store.Put(ctx, key, sum); err != nil {
		d.fail("store", err)
	}
	return sum, nil
}

func (d *Digester) fail(op string, err error) {
	if d.failures.Add(1) > 1 {
		return
	}
	logging.WarnWithContext(d.logger, "digest cache unavailable; hashing files directly", "digest_cache_failed",
		logging.String("operation", op),
		logging.String("cache_path", d.store.Path()),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "delete the cache database or run without --cache"),
		logging.String(logging.FieldImpact, "files are re-read instead of served from cache"),
	)
}

// Stats reports cache effectiveness for the run so far.
func (d *Digester) Stats() (hits, misses, failures int64) {
	return d.hits.Load(), d.misses.Load(), d.failures.Load()
}
