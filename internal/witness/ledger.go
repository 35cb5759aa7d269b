package witness

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// EnvPath overrides the ledger location for every tool in the pipeline.
const EnvPath = "EPISTEMIC_WITNESS"

const defaultRelPath = ".epistemic/witness.jsonl"

// maxLineSize bounds a single ledger line when reading.
const maxLineSize = 1 << 20

const lockRetryDelay = 50 * time.Millisecond

// DefaultPath resolves the ledger path: $EPISTEMIC_WITNESS, then
// $HOME/.epistemic/witness.jsonl, then a path relative to the working directory.
func DefaultPath() string {
	if path := strings.TrimSpace(os.Getenv(EnvPath)); path != "" {
		return path
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, defaultRelPath)
	}
	return defaultRelPath
}

// Ledger appends to and reads from one JSONL file.
type Ledger struct {
	path string
	lock *flock.Flock
}

// Open returns a ledger for path without touching the filesystem.
func Open(path string) *Ledger {
	return &Ledger{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the ledger file location.
func (l *Ledger) Path() string {
	return l.path
}

// Append writes rec as one line. Concurrent runs serialise on an advisory
// lock file next to the ledger so that lines never interleave.
func (l *Ledger) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode witness record: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create witness directory: %w", err)
		}
	}

	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire witness lock: %w", err)
	}
	if !locked {
		return errors.New("acquire witness lock: not acquired")
	}
	defer func() { _ = l.lock.Unlock() }()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open witness ledger: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("append witness record: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close witness ledger: %w", err)
	}
	return nil
}

// Load returns every well-formed record in file order. A missing ledger is
// empty; blank and malformed lines are skipped.
func (l *Ledger) Load() ([]Record, error) {
	file, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open witness ledger: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.Tool == "" || rec.Outcome == "" {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read witness ledger: %w", err)
	}
	return records, nil
}
