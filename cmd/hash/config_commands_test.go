package main

import (
	"os"
	"path/filepath"
	"testing"

	"hashstage/internal/testsupport"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "", "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, "", ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, "", ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target, "")
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestConfigValidateReportsMissingFile(t *testing.T) {
	t.Setenv("EPISTEMIC_WITNESS", "")
	missing := filepath.Join(t.TempDir(), "absent.toml")

	out, _, err := runCLI(t, []string{"config", "validate"}, missing, "")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config file did not exist; defaults were used")
}

func TestConfigValidateRejectsUnknownAlgorithm(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithAlgorithm("md5"))

	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	requireContains(t, err.Error(), "hashing.algorithm")
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithJobs(3), testsupport.WithCache())

	out, _, err := runCLI(t, []string{"config", "show"}, env.configPath, "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[hashing]")
	requireContains(t, out, "jobs = 3")
	requireContains(t, out, env.cfg.Witness.Path)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"version"}, "", "")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	requireContains(t, out, "hash ")
	requireContains(t, out, "(hash.v0)")
}
