package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"hashstage/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose ledger and cache live in a per-test temp
// directory. Logging is JSON at error level so test output stays quiet.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Witness.Path = filepath.Join(base, "witness", "witness.jsonl")
	cfgVal.Cache.Path = filepath.Join(base, "cache", "digests.db")
	cfgVal.Logging.Format = "json"
	cfgVal.Logging.Level = "error"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAlgorithm sets the configured digest algorithm.
func WithAlgorithm(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hashing.Algorithm = name
	}
}

// WithJobs sets the configured worker count.
func WithJobs(jobs int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Hashing.Jobs = jobs
	}
}

// WithoutWitness disables the ledger append.
func WithoutWitness() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Witness.Enabled = false
	}
}

// WithCache enables the digest cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Witness.Path))
}

// WriteConfig encodes cfg as TOML at path.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()

	content, err := cfg.Encode()
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config %s: %v", path, err)
	}
}
