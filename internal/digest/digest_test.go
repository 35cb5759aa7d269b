package digest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseAlgorithmIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		name string
		want Algorithm
	}{
		{"sha256", SHA256},
		{"SHA256", SHA256},
		{" Sha256 ", SHA256},
		{"blake3", BLAKE3},
		{"BLAKE3", BLAKE3},
	}
	for _, tt := range tests {
		got, err := ParseAlgorithm(tt.name)
		if err != nil {
			t.Fatalf("ParseAlgorithm(%q): %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("ParseAlgorithm(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestParseAlgorithmRejectsUnknownNames(t *testing.T) {
	_, err := ParseAlgorithm("md5")
	if !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	for _, name := range []string{"sha256", "blake3"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q should list %s", err, name)
		}
	}
}

func TestFormatBytesHashLowercasesHex(t *testing.T) {
	if got := BLAKE3.FormatBytesHash("ABCDEF1234"); got != "blake3:abcdef1234" {
		t.Fatalf("unexpected format: %q", got)
	}
}

func TestFileKnownVectors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	abc := filepath.Join(dir, "abc")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abc, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		alg  Algorithm
		want string
	}{
		{empty, SHA256, "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{abc, SHA256, "sha256:ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{empty, BLAKE3, "blake3:af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
	}
	for _, tt := range tests {
		got, err := File(tt.path, tt.alg)
		if err != nil {
			t.Fatalf("File(%s, %v): %v", filepath.Base(tt.path), tt.alg, err)
		}
		if got != tt.want {
			t.Fatalf("File(%s, %v) = %s, want %s", filepath.Base(tt.path), tt.alg, got, tt.want)
		}
	}
}

func TestFileDigestLengthIs64Hex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 200*1024)), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, alg := range Algorithms() {
		got, err := NewFileDigester(alg).Digest(path)
		if err != nil {
			t.Fatal(err)
		}
		hexPart := strings.TrimPrefix(got, alg.Prefix()+":")
		if len(hexPart) != 64 || strings.ToLower(hexPart) != hexPart {
			t.Fatalf("unexpected digest for %v: %s", alg, got)
		}
	}
}

func TestFileMissingReturnsError(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "missing"), SHA256)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if text := ErrorText(err); strings.Contains(text, "missing") {
		t.Fatalf("ErrorText should drop the path, got %q", text)
	}
}

func TestFileDigesterConcurrentUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shared")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatal(err)
	}
	d := NewFileDigester(SHA256)
	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = d.Digest(path)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		if got != results[0] || got == "" {
			t.Fatalf("inconsistent concurrent digests: %v", results)
		}
	}
}
