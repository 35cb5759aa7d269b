// Package config loads, normalizes, and validates hash configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as EPISTEMIC_WITNESS.
// Command-line flags override whatever this package resolves.
package config
