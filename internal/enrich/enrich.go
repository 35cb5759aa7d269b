// Package enrich holds the per-record transforms of the hashing stage.
//
// Every function is pure: it reads the input record and returns a new one,
// touching only version, bytes_hash, hash_algorithm, _skipped, _warnings and
// tool_versions. All other fields pass through byte-for-byte.
package enrich

import (
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"hashstage/internal/buildinfo"
	"hashstage/internal/manifest"
)

const (
	// CodeIO marks a record whose file could not be read.
	CodeIO = "E_IO"
	// MessageCannotRead is the fixed warning message for CodeIO.
	MessageCannotRead = "Cannot read file"
)

// Warning is one append-only entry of a record's _warnings array.
type Warning struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}

// IODetail is the detail payload of an E_IO warning.
type IODetail struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// IsAlreadySkipped reports whether an upstream tool marked the record as
// skipped. Only a JSON true counts; strings and numbers do not.
func IsAlreadySkipped(rec manifest.Record) bool {
	return rec.Get(manifest.FieldSkipped).Type == gjson.True
}

// ApplyPassthrough forwards an upstream-skipped record without hashing it.
// Existing _warnings and _skipped are left exactly as they were.
func ApplyPassthrough(rec manifest.Record) (manifest.Record, error) {
	e := edit(rec)
	e.set(manifest.FieldVersion, buildinfo.SchemaVersion)
	e.set(manifest.FieldBytesHash, nil)
	e.set(manifest.FieldHashAlgorithm, nil)
	e.mergeToolVersion()
	return e.result()
}

// ApplyHashed records a successful digest. It never sets _skipped.
func ApplyHashed(rec manifest.Record, digest, algorithm string) (manifest.Record, error) {
	e := edit(rec)
	e.set(manifest.FieldVersion, buildinfo.SchemaVersion)
	e.set(manifest.FieldBytesHash, digest)
	e.set(manifest.FieldHashAlgorithm, algorithm)
	e.mergeToolVersion()
	return e.result()
}

// ApplyIOFailure marks the record skipped, nulls the hash fields and appends
// one E_IO warning after any existing ones.
func ApplyIOFailure(rec manifest.Record, path, errText string) (manifest.Record, error) {
	e := edit(rec)
	e.set(manifest.FieldVersion, buildinfo.SchemaVersion)
	e.set(manifest.FieldSkipped, true)
	e.set(manifest.FieldBytesHash, nil)
	e.set(manifest.FieldHashAlgorithm, nil)
	e.appendWarning(Warning{
		Tool:    buildinfo.Tool,
		Code:    CodeIO,
		Message: MessageCannotRead,
		Detail:  IODetail{Path: path, Error: errText},
	})
	e.mergeToolVersion()
	return e.result()
}

// editor chains record writes and keeps the first failure.
type editor struct {
	rec manifest.Record
	err error
}

func edit(rec manifest.Record) *editor {
	return &editor{rec: rec}
}

func (e *editor) set(key string, value any) {
	if e.err != nil {
		return
	}
	e.rec, e.err = e.rec.Set(key, value)
}

func (e *editor) setRaw(key string, raw []byte) {
	if e.err != nil {
		return
	}
	e.rec, e.err = e.rec.SetRaw(key, raw)
}

// mergeToolVersion adds this tool's entry to tool_versions, keeping upstream
// entries. A missing or non-object tool_versions is replaced.
func (e *editor) mergeToolVersion() {
	if e.err != nil {
		return
	}
	if e.rec.Get(manifest.FieldToolVersions).IsObject() {
		e.set(manifest.FieldToolVersions+"."+buildinfo.Tool, buildinfo.Version)
		return
	}
	e.set(manifest.FieldToolVersions, map[string]string{buildinfo.Tool: buildinfo.Version})
}

func (e *editor) appendWarning(w Warning) {
	if e.err != nil {
		return
	}
	encoded, err := json.Marshal(w)
	if err != nil {
		e.err = err
		return
	}
	if e.rec.Get(manifest.FieldWarnings).IsArray() {
		e.setRaw(manifest.FieldWarnings+".-1", encoded)
		return
	}
	wrapped := make([]byte, 0, len(encoded)+2)
	wrapped = append(wrapped, '[')
	wrapped = append(wrapped, encoded...)
	wrapped = append(wrapped, ']')
	e.setRaw(manifest.FieldWarnings, wrapped)
}

func (e *editor) result() (manifest.Record, error) {
	return e.rec, e.err
}
