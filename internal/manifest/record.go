package manifest

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Record is an open-ended JSON object. The zero value is an empty object.
type Record struct {
	raw []byte
}

// FromJSON wraps raw as a record. raw must hold a single JSON object.
func FromJSON(raw []byte) (Record, error) {
	if !gjson.ValidBytes(raw) {
		return Record{}, errors.New("record is not valid JSON")
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return Record{}, errors.New(errNotObject)
	}
	return Record{raw: raw}, nil
}

// MustFromJSON is FromJSON for literals known to be valid.
func MustFromJSON(raw string) Record {
	rec, err := FromJSON([]byte(raw))
	if err != nil {
		panic(err)
	}
	return rec
}

// Bytes returns the compact-as-received JSON object. Callers must not modify it.
func (r Record) Bytes() []byte {
	if len(r.raw) == 0 {
		return []byte("{}")
	}
	return r.raw
}

func (r Record) String() string {
	return string(r.Bytes())
}

// Get reads a field by gjson path.
func (r Record) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Bytes(), path)
}

// Path returns the file location the record describes.
func (r Record) Path() string {
	return r.Get(FieldPath).String()
}

// Set returns a copy of the record with key set to value. Existing keys keep
// their position; new keys are appended.
func (r Record) Set(key string, value any) (Record, error) {
	out, err := sjson.SetBytes(r.Bytes(), key, value)
	if err != nil {
		return r, fmt.Errorf("set %s: %w", key, err)
	}
	return Record{raw: out}, nil
}

// SetRaw is Set for an already-encoded JSON value.
func (r Record) SetRaw(key string, value []byte) (Record, error) {
	out, err := sjson.SetRawBytes(r.Bytes(), key, value)
	if err != nil {
		return r, fmt.Errorf("set %s: %w", key, err)
	}
	return Record{raw: out}, nil
}
