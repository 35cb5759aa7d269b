package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"hashstage/internal/config"
	"hashstage/internal/describe"
	"hashstage/internal/digest"
	"hashstage/internal/hashcache"
	"hashstage/internal/logging"
	"hashstage/internal/pipeline"
	"hashstage/internal/progress"
	"hashstage/internal/refusal"
	"hashstage/internal/runctx"
	"hashstage/internal/witness"
)

const stdinName = "-"

type stageOptions struct {
	algorithm string
	jobs      int
	noWitness bool
	progress  bool
	cache     bool
	describe  bool
	schema    bool
}

func runStage(cmd *cobra.Command, ctx *commandContext, opts stageOptions, args []string) error {
	out := cmd.OutOrStdout()
	switch {
	case opts.describe:
		_, err := out.Write(describe.Operator())
		return err
	case opts.schema:
		_, err := out.Write(describe.Schema())
		return err
	}

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	input := stdinName
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		input = args[0]
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runID := uuid.NewString()
	runCtx = runctx.WithRunID(runCtx, runID)
	runCtx = runctx.WithInput(runCtx, input)
	cliLogger := logging.WithContext(runCtx, logging.NewComponentLogger(logger, "cli"))

	algorithmName := cfg.Hashing.Algorithm
	if cmd.Flags().Changed("algorithm") {
		algorithmName = opts.algorithm
	}
	workers := pipeline.ResolveWorkers(requestedJobs(cmd, opts, cfg))

	pipeOpts := pipeline.Options{
		Output:  out,
		Workers: workers,
		Logger:  logger,
		Params: witness.Params{
			Input:     input,
			Algorithm: algorithmName,
			Jobs:      workers,
			RunID:     runID,
		},
	}
	if cfg.Witness.Enabled && !opts.noWitness {
		pipeOpts.Ledger = witness.Open(cfg.Witness.Path)
	}

	alg, err := digest.ParseAlgorithm(algorithmName)
	if err != nil {
		env := refusal.BadAlgorithm(algorithmName, err).
			WithNextCommand(nextCommand("--algorithm "+digest.Default.Prefix(), input))
		res := pipeline.Refuse(runCtx, pipeOpts, env)
		return exitWith(res.Outcome.ExitCode())
	}
	pipeOpts.Algorithm = alg
	pipeOpts.Params.Algorithm = alg.Prefix()

	reader, closeInput, err := openInput(cmd, input)
	if err != nil {
		res := pipeline.Refuse(runCtx, pipeOpts, refusal.StreamFailure(err))
		return exitWith(res.Outcome.ExitCode())
	}
	defer closeInput()
	pipeOpts.Input = reader

	var digester digest.Digester = digest.NewFileDigester(alg)
	if cfg.Cache.Enabled || opts.cache {
		store, err := hashcache.Open(runCtx, cfg.Cache.Path)
		if err != nil {
			logging.WarnWithContext(cliLogger, "digest cache unavailable; hashing every file", "cache_open_failed",
				logging.String("cache_path", cfg.Cache.Path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "files are re-read even when unchanged"),
			)
		} else {
			defer store.Close()
			cached := hashcache.NewDigester(digester, store, alg, logger)
			defer logCacheStats(cliLogger, cached)
			digester = cached
		}
	}
	pipeOpts.Digester = digester

	if cfg.Progress.Enabled || opts.progress {
		interval := time.Duration(cfg.Progress.IntervalMS) * time.Millisecond
		if interval <= 0 {
			interval = progress.DefaultInterval
		}
		pipeOpts.Progress = progress.NewReporter(cmd.ErrOrStderr(), interval)
	}

	started := time.Now()
	res := pipeline.Run(runCtx, pipeOpts)
	logRunResult(cliLogger, res, workers, pipeOpts.Ledger != nil, time.Since(started))
	return exitWith(res.Outcome.ExitCode())
}

func logRunResult(logger *slog.Logger, res pipeline.Result, workers int, witnessed bool, elapsed time.Duration) {
	attrs := []logging.Attr{
		logging.String("outcome", res.Outcome.String()),
		logging.Int("records", res.Records),
		logging.Int("hashed", res.Hashed),
		logging.Int("skipped", res.Skipped),
		logging.Int("workers", workers),
		logging.Bool("witnessed", witnessed),
		logging.Duration("elapsed", elapsed),
		logging.String("output_hash", res.OutputHash),
	}
	if res.Refusal != nil {
		attrs = append(attrs,
			logging.String("refusal_code", string(res.Refusal.Refusal.Code)),
			logging.String(logging.FieldErrorHint, "see the refusal envelope on stdout"),
		)
		logging.ErrorWithContext(logger, "hash run refused", "run_refused", attrs...)
		return
	}
	logger.Info("hash run finished", logging.Args(attrs...)...)
}

// requestedJobs applies flag-over-config precedence. nil asks for one worker
// per logical CPU.
func requestedJobs(cmd *cobra.Command, opts stageOptions, cfg *config.Config) *int {
	if cmd.Flags().Changed("jobs") {
		jobs := opts.jobs
		return &jobs
	}
	if cfg.Hashing.Jobs > 0 {
		jobs := cfg.Hashing.Jobs
		return &jobs
	}
	return nil
}

func openInput(cmd *cobra.Command, input string) (io.Reader, func(), error) {
	if input == stdinName {
		return cmd.InOrStdin(), func() {}, nil
	}
	file, err := os.Open(input)
	if err != nil {
		return nil, nil, fmt.Errorf("open manifest: %w", err)
	}
	return file, func() { _ = file.Close() }, nil
}

func nextCommand(flag, input string) string {
	if input == stdinName {
		return "hash " + flag
	}
	return "hash " + flag + " " + input
}

func logCacheStats(logger *slog.Logger, d *hashcache.Digester) {
	hits, misses, failures := d.Stats()
	logger.Debug("digest cache stats",
		logging.Args(
			logging.Int64("hits", hits),
			logging.Int64("misses", misses),
			logging.Int64("failures", failures),
		)...,
	)
}
