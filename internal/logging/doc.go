// Package logging assembles structured slog loggers for hash.
//
// Logs always go to stderr (or files), never stdout, which carries the record
// stream. The package owns the console and JSON handlers, level parsing, and
// context-aware helpers that tag log lines with the run identifier. A no-op
// logger is provided for tests and wiring code that cannot fail.
package logging
