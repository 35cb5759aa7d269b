package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hashstage/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", buildinfo.Tool, buildinfo.Version, buildinfo.SchemaVersion)
			return nil
		},
	}
}
