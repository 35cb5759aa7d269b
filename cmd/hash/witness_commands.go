package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"hashstage/internal/witness"
)

const noMatchMessage = "No matching witness records"

type witnessFilterFlags struct {
	tool      string
	outcome   string
	since     string
	until     string
	inputHash string
	limit     int
	json      bool
}

func (f *witnessFilterFlags) register(cmd *cobra.Command, withLimit bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.tool, "tool", "", "Only records written by this tool")
	flags.StringVar(&f.outcome, "outcome", "", "Only records with this outcome")
	flags.StringVar(&f.since, "since", "", "Only records at or after this RFC 3339 time")
	flags.StringVar(&f.until, "until", "", "Only records at or before this RFC 3339 time")
	flags.StringVar(&f.inputHash, "input-hash", "", "Only records whose output hash contains this value")
	if withLimit {
		flags.IntVar(&f.limit, "limit", 0, "Maximum number of records (0 for all)")
	}
	flags.BoolVar(&f.json, "json", false, "Output JSON")
}

func (f *witnessFilterFlags) query() (witness.Query, error) {
	since, err := witness.ParseBound(f.since)
	if err != nil {
		return witness.Query{}, fmt.Errorf("--since: %w", err)
	}
	until, err := witness.ParseBound(f.until)
	if err != nil {
		return witness.Query{}, fmt.Errorf("--until: %w", err)
	}
	if f.limit < 0 {
		return witness.Query{}, fmt.Errorf("--limit must be zero or positive")
	}
	return witness.Query{
		Tool:      f.tool,
		Outcome:   f.outcome,
		Since:     since,
		Until:     until,
		InputHash: f.inputHash,
		Limit:     f.limit,
	}, nil
}

func newWitnessCommand(ctx *commandContext) *cobra.Command {
	witnessCmd := &cobra.Command{
		Use:   "witness",
		Short: "Inspect the witness ledger",
	}

	witnessCmd.AddCommand(newWitnessQueryCommand(ctx))
	witnessCmd.AddCommand(newWitnessLastCommand(ctx))
	witnessCmd.AddCommand(newWitnessCountCommand(ctx))

	return witnessCmd
}

func newWitnessQueryCommand(ctx *commandContext) *cobra.Command {
	var filters witnessFilterFlags

	cmd := &cobra.Command{
		Use:   "query",
		Short: "List ledger records, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := filters.query()
			if err != nil {
				return err
			}
			records, err := loadLedger(ctx)
			if err != nil {
				return err
			}
			matched := witness.Filter(records, q)

			if filters.json {
				if err := writeJSON(cmd, matched); err != nil {
					return err
				}
				return exitWith(matchStatus(len(matched)))
			}

			out := cmd.OutOrStdout()
			if len(matched) == 0 {
				fmt.Fprintln(out, noMatchMessage)
				return exitWith(1)
			}
			fmt.Fprintln(out, renderWitnessTable(matched, shouldColorize(out)))
			return nil
		},
	}

	filters.register(cmd, true)
	return cmd
}

func newWitnessLastCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "last",
		Short: "Show the most recent ledger record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadLedger(ctx)
			if err != nil {
				return err
			}
			rec, ok := witness.Last(records)

			if asJSON {
				var v any
				if ok {
					v = rec
				}
				if err := writeJSON(cmd, v); err != nil {
					return err
				}
				if !ok {
					return exitWith(1)
				}
				return nil
			}

			out := cmd.OutOrStdout()
			if !ok {
				fmt.Fprintln(out, noMatchMessage)
				return exitWith(1)
			}
			fmt.Fprintln(out, renderWitnessTable([]witness.Record{rec}, shouldColorize(out)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}

func newWitnessCountCommand(ctx *commandContext) *cobra.Command {
	var filters witnessFilterFlags

	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count matching ledger records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := filters.query()
			if err != nil {
				return err
			}
			records, err := loadLedger(ctx)
			if err != nil {
				return err
			}
			count := len(witness.Filter(records, q))

			if filters.json {
				if err := writeJSON(cmd, map[string]int{"count": count}); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), count)
			}
			return exitWith(matchStatus(count))
		},
	}

	filters.register(cmd, false)
	return cmd
}

func loadLedger(ctx *commandContext) ([]witness.Record, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	records, err := witness.Open(cfg.Witness.Path).Load()
	if err != nil {
		return nil, fmt.Errorf("load witness ledger: %w", err)
	}
	return records, nil
}

func matchStatus(matched int) int {
	if matched == 0 {
		return 1
	}
	return 0
}

func renderWitnessTable(records []witness.Record, colorize bool) string {
	headers := []string{"When", "Tool", "Outcome", "Exit", "Input", "Output Hash"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		when := rec.TS
		if ts, ok := rec.Time(); ok {
			when = humanize.Time(ts)
		}
		input, _ := rec.Params["input"].(string)
		rows = append(rows, []string{
			when,
			rec.Tool,
			colorOutcome(rec.Outcome, colorize),
			strconv.Itoa(rec.ExitCode),
			input,
			shortHash(rec.OutputHash),
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
}

// shortHash keeps the algorithm prefix and the first 12 hex digits.
func shortHash(value string) string {
	const keep = 12
	prefix, hex, found := strings.Cut(value, ":")
	if !found {
		prefix, hex = "", value
	}
	if len(hex) > keep {
		hex = hex[:keep]
	}
	if !found {
		return hex
	}
	return prefix + ":" + hex
}
