// Command hash is the hashing stage of the manifest pipeline.
//
// It reads NDJSON manifest records from a file or stdin, attaches a content
// digest to every record, and writes the enriched records to stdout in input
// order. Exit status is 0 when every record was hashed, 1 when some files
// could not be read, and 2 when the run was refused.
//
// Subcommands query the shared witness ledger and manage configuration.
package main
