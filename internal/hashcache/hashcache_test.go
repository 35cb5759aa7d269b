package hashcache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"hashstage/internal/digest"
)

type countingDigester struct {
	calls atomic.Int32
	err   error
}

func (c *countingDigester) Digest(path string) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return digest.File(path, digest.SHA256)
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "cache", "digests.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreLookupAndPut(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	key := Key{Path: "/data/a", Size: 10, ModTimeNS: 100, Algorithm: "sha256"}

	if _, ok, err := store.Lookup(ctx, key); err != nil || ok {
		t.Fatalf("empty store lookup = %v, %v", ok, err)
	}
	if err := store.Put(ctx, key, "sha256:aa"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, ok, err := store.Lookup(ctx, key)
	if err != nil || !ok || got != "sha256:aa" {
		t.Fatalf("Lookup = %q, %v, %v", got, ok, err)
	}

	stale := key
	stale.ModTimeNS = 200
	if _, ok, _ := store.Lookup(ctx, stale); ok {
		t.Fatal("changed mtime must miss")
	}
	other := key
	other.Algorithm = "blake3"
	if _, ok, _ := store.Lookup(ctx, other); ok {
		t.Fatal("different algorithm must miss")
	}

	if err := store.Put(ctx, stale, "sha256:bb"); err != nil {
		t.Fatal(err)
	}
	if n, err := store.Count(ctx); err != nil || n != 1 {
		t.Fatalf("Count = %d, %v; want one row per path and algorithm", n, err)
	}
	if got, ok, _ := store.Lookup(ctx, stale); !ok || got != "sha256:bb" {
		t.Fatalf("replaced entry = %q, %v", got, ok)
	}
}

func TestOpenReusesExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digests.db")
	ctx := context.Background()
	first, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	key := Key{Path: "/x", Size: 1, ModTimeNS: 1, Algorithm: "sha256"}
	if err := first.Put(ctx, key, "sha256:01"); err != nil {
		t.Fatal(err)
	}
	_ = first.Close()

	second, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()
	if _, ok, _ := second.Lookup(ctx, key); !ok {
		t.Fatal("entry lost across reopen")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digests.db")
	ctx := context.Background()
	store, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestDigesterServesUnchangedFilesFromCache(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	inner := &countingDigester{}
	d := NewDigester(inner, openTestStore(t), digest.SHA256, nil)

	first, err := d.Digest(path)
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.Digest(path)
	if err != nil {
		t.Fatal(err)
	}
	if first != second || first != "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("digests = %q / %q", first, second)
	}
	if inner.calls.Load() != 1 {
		t.Fatalf("inner called %d times, want 1", inner.calls.Load())
	}

	later := time.Now().Add(time.Hour)
	if err := os.WriteFile(path, []byte("abcd"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Digest(path); err != nil {
		t.Fatal(err)
	}
	if inner.calls.Load() != 2 {
		t.Fatal("modified file must be re-hashed")
	}
	hits, misses, failures := d.Stats()
	if hits != 1 || misses != 2 || failures != 0 {
		t.Fatalf("stats = %d/%d/%d", hits, misses, failures)
	}
}

func TestDigesterPassesThroughErrors(t *testing.T) {
	inner := &countingDigester{}
	d := NewDigester(inner, openTestStore(t), digest.SHA256, nil)
	if _, err := d.Digest(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if inner.calls.Load() != 1 {
		t.Fatal("missing file must reach the inner digester")
	}
}

func TestDigesterFallsBackWhenCacheFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := openTestStore(t)
	_ = store.Close()

	inner := &countingDigester{}
	d := NewDigester(inner, store, digest.SHA256, nil)
	sum, err := d.Digest(path)
	if err != nil || sum == "" {
		t.Fatalf("Digest = %q, %v", sum, err)
	}
	if _, _, failures := d.Stats(); failures == 0 {
		t.Fatal("expected cache failures to be counted")
	}
}

// rewritingDigester changes the file underneath the cache while digesting it.
type rewritingDigester struct {
	countingDigester
}

func (r *rewritingDigester) Digest(path string) (string, error) {
	sum, err := r.countingDigester.Digest(path)
	later := time.Now().Add(time.Hour)
	if werr := os.WriteFile(path, []byte("changed while hashing"), 0o644); werr != nil {
		return "", werr
	}
	if cerr := os.Chtimes(path, later, later); cerr != nil {
		return "", cerr
	}
	return sum, err
}

func TestDigesterSkipsCacheWhenFileChangesDuringRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := openTestStore(t)
	d := NewDigester(&rewritingDigester{}, store, digest.SHA256, nil)

	if _, err := d.Digest(path); err != nil {
		t.Fatal(err)
	}
	count, err := store.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("cache holds %d entries, want 0 for a file modified mid-read", count)
	}
}
