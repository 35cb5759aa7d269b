package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var opts stageOptions

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "hash [manifest]",
		Short:         "Attach content digests to manifest records",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			if cmd.Parent() == nil && (opts.describe || opts.schema) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStage(cmd, ctx, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	flags := rootCmd.Flags()
	flags.StringVar(&opts.algorithm, "algorithm", "", "Digest algorithm: sha256 or blake3 (default from config, sha256)")
	flags.IntVar(&opts.jobs, "jobs", 0, "Worker count (default one per logical CPU)")
	flags.BoolVar(&opts.noWitness, "no-witness", false, "Do not append this run to the witness ledger")
	flags.BoolVar(&opts.progress, "progress", false, "Emit JSON progress events on stderr")
	flags.BoolVar(&opts.cache, "cache", false, "Reuse digests of unchanged files from the digest cache")
	flags.BoolVar(&opts.describe, "describe", false, "Print the operator manifest and exit")
	flags.BoolVar(&opts.schema, "schema", false, "Print the output record JSON Schema and exit")

	rootCmd.AddCommand(newWitnessCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
