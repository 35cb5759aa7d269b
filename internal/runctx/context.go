// Package runctx carries per-run identifiers through context.Context so that
// log lines and ledger records of one invocation can be correlated.
package runctx

import "context"

type contextKey string

const (
	runIDKey contextKey = "run_id"
	inputKey contextKey = "input"
)

// WithRunID annotates context with the run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithInput annotates context with the manifest source ("-" for stdin).
func WithInput(ctx context.Context, input string) context.Context {
	if input == "" {
		return ctx
	}
	return context.WithValue(ctx, inputKey, input)
}

// InputFromContext returns the manifest source if present.
func InputFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(inputKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
