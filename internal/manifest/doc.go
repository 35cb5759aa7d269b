// Package manifest models one line of the NDJSON manifest stream.
//
// A Record keeps the producer's JSON object bytes untouched and edits them in
// place through gjson/sjson paths, so unknown fields, key order, and number
// literals survive every pass through the pipeline. Parse validates a single
// line and reports the 1-based line number on failure.
package manifest
