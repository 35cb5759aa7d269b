// Package buildinfo carries the identity this tool stamps onto every record,
// refusal, and ledger entry it produces.
package buildinfo

const (
	// Tool is the key used in tool_versions, warnings, and ledger entries.
	Tool = "hash"
	// SchemaVersion is written into the version field of every emitted record.
	SchemaVersion = "hash.v0"
)

// Version is the tool release. Overridden at build time with
// -ldflags "-X hashstage/internal/buildinfo.Version=...".
var Version = "0.1.0"
