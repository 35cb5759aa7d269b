// Package describe holds the machine-readable self-description printed by
// --describe and --schema.
package describe

import _ "embed"

//go:embed operator.json
var operator []byte

//go:embed hash.v0.schema.json
var schema []byte

// Operator returns the operator manifest describing invocation, options,
// exit codes and refusal codes.
func Operator() []byte {
	return operator
}

// Schema returns the JSON Schema of an emitted record.
func Schema() []byte {
	return schema
}
