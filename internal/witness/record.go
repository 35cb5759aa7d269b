// Package witness maintains the append-only audit ledger shared by the
// pipeline tools. Each run appends exactly one record describing its outcome.
package witness

import (
	"time"

	"hashstage/internal/buildinfo"
)

// Version identifies the ledger record layout.
const Version = "witness.v0"

// Record is one ledger line. OutputHash and TS are optional when reading
// lines written by other tools.
type Record struct {
	Version    string         `json:"version"`
	Tool       string         `json:"tool"`
	Outcome    string         `json:"outcome"`
	ExitCode   int            `json:"exit_code"`
	OutputHash string         `json:"output_hash,omitempty"`
	Params     map[string]any `json:"params"`
	TS         string         `json:"ts,omitempty"`
}

// Params describes the invocation of a hashing run.
type Params struct {
	Input     string
	Algorithm string
	Jobs      int
	RunID     string
}

func (p Params) asMap() map[string]any {
	return map[string]any{
		"input":     p.Input,
		"algorithm": p.Algorithm,
		"jobs":      p.Jobs,
		"run_id":    p.RunID,
	}
}

// NewRecord builds the ledger record for a finished hashing run.
func NewRecord(outcome string, exitCode int, outputHash string, params Params, at time.Time) Record {
	return Record{
		Version:    Version,
		Tool:       buildinfo.Tool,
		Outcome:    outcome,
		ExitCode:   exitCode,
		OutputHash: outputHash,
		Params:     params.asMap(),
		TS:         at.UTC().Format(time.RFC3339),
	}
}

// Time parses TS. ok is false when the record carries no usable timestamp.
func (r Record) Time() (time.Time, bool) {
	if r.TS == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339, r.TS)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
