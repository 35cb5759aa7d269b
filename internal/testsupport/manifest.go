package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

// ManifestLine encodes one upstream record for path. Extra fields are merged
// over the defaults (version, path, size).
func ManifestLine(t testing.TB, path string, extra map[string]any) string {
	t.Helper()

	rec := map[string]any{
		"version": "vacuum.v0",
		"path":    path,
		"size":    0,
	}
	if info, err := os.Stat(path); err == nil {
		rec["size"] = info.Size()
	}
	for k, v := range extra {
		rec[k] = v
	}
	encoded, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("encode manifest line: %v", err)
	}
	return string(encoded)
}

// WriteManifest writes lines as an NDJSON file and returns its path.
func WriteManifest(t testing.TB, dir string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, "manifest.jsonl")
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write manifest %s: %v", path, err)
	}
	return path
}
