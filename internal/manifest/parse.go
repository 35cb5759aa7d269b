package manifest

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Field names with meaning to this stage.
const (
	FieldPath          = "path"
	FieldVersion       = "version"
	FieldBytesHash     = "bytes_hash"
	FieldHashAlgorithm = "hash_algorithm"
	FieldSkipped       = "_skipped"
	FieldWarnings      = "_warnings"
	FieldToolVersions  = "tool_versions"
)

const (
	errNotObject   = "record must be a JSON object"
	errInvalidUTF8 = "record is not valid UTF-8"
)

var requiredFields = []string{FieldPath, FieldVersion}

// ParseFailure describes why a manifest line was rejected. Exactly one of
// Err or MissingField is set.
type ParseFailure struct {
	Line         int
	Err          string
	MissingField string
}

func (f *ParseFailure) Error() string {
	if f.MissingField != "" {
		return fmt.Sprintf("line %d: missing required field %q", f.Line, f.MissingField)
	}
	return fmt.Sprintf("line %d: %s", f.Line, f.Err)
}

// IsBlank reports whether line carries no content and must be skipped
// without consuming a sequence index.
func IsBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

// Parse validates one manifest line. lineNumber is 1-based and only used in
// failures.
func Parse(line []byte, lineNumber int) (Record, error) {
	trimmed := bytes.TrimSpace(line)
	if !utf8.Valid(trimmed) {
		return Record{}, &ParseFailure{Line: lineNumber, Err: errInvalidUTF8}
	}
	if !gjson.ValidBytes(trimmed) {
		return Record{}, &ParseFailure{Line: lineNumber, Err: syntaxError(trimmed)}
	}

	doc := gjson.ParseBytes(trimmed)
	if !doc.IsObject() {
		return Record{}, &ParseFailure{Line: lineNumber, Err: errNotObject}
	}
	for _, field := range requiredFields {
		value := doc.Get(field)
		if !value.Exists() || value.Type == gjson.Null {
			return Record{}, &ParseFailure{Line: lineNumber, MissingField: field}
		}
	}
	if doc.Get(FieldPath).Type != gjson.String {
		return Record{}, &ParseFailure{Line: lineNumber, Err: fmt.Sprintf("field %q must be a string", FieldPath)}
	}

	raw := make([]byte, len(trimmed))
	copy(raw, trimmed)
	return Record{raw: raw}, nil
}

// syntaxError recovers a decoder message for input gjson already rejected.
func syntaxError(data []byte) string {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err.Error()
	}
	return "invalid JSON"
}
