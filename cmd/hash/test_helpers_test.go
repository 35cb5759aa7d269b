package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"hashstage/internal/config"
	"hashstage/internal/testsupport"
	"hashstage/internal/witness"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("EPISTEMIC_WITNESS", "")

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	configPath := filepath.Join(base, "config.toml")
	testsupport.WriteConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
	}
}

func (env *cliTestEnv) ledger(t *testing.T) []witness.Record {
	t.Helper()
	records, err := witness.Open(env.cfg.Witness.Path).Load()
	if err != nil {
		t.Fatalf("load ledger: %v", err)
	}
	return records
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return -1
}

func requireExitCode(t *testing.T, err error, want int) {
	t.Helper()
	if got := exitCodeOf(err); got != want {
		t.Fatalf("exit code = %d, want %d (err=%v)", got, want, err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
