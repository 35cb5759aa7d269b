// Package refusal builds the single JSON object emitted on stdout when a run
// cannot produce a trustworthy record stream.
package refusal

import (
	"fmt"

	"github.com/goccy/go-json"

	"hashstage/internal/buildinfo"
)

// Outcome is the fixed outcome string of every envelope.
const Outcome = "REFUSAL"

// Code classifies a refusal.
type Code string

const (
	// BadInput covers malformed lines, missing required fields and bad run parameters.
	BadInput Code = "E_BAD_INPUT"
	// IO covers failures of the input or output stream.
	IO Code = "E_IO"
)

// Message returns the fixed human-readable text for the code.
func (c Code) Message() string {
	switch c {
	case BadInput:
		return "Input is not valid JSONL or missing required fields"
	case IO:
		return "Cannot read input/output stream"
	default:
		return string(c)
	}
}

// LineError is the detail of a line that is not a JSON object.
type LineError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

// MissingField is the detail of a line lacking a required field.
type MissingField struct {
	Line         int    `json:"line"`
	MissingField string `json:"missing_field"`
}

// StreamError is the detail of an input or output failure.
type StreamError struct {
	Error string `json:"error"`
}

// AlgorithmError is the detail of an unsupported algorithm name.
type AlgorithmError struct {
	Algorithm string `json:"algorithm"`
	Error     string `json:"error"`
}

// Body is the refusal member of the envelope.
type Body struct {
	Code        Code    `json:"code"`
	Message     string  `json:"message"`
	Detail      any     `json:"detail"`
	NextCommand *string `json:"next_command"`
}

// Envelope is the complete refusal document. It implements error so that it
// can travel through ordinary error returns up to the CLI.
type Envelope struct {
	Version string `json:"version"`
	Outcome string `json:"outcome"`
	Refusal Body   `json:"refusal"`
}

// New builds an envelope with the code's standard message.
func New(code Code, detail any) *Envelope {
	return &Envelope{
		Version: buildinfo.SchemaVersion,
		Outcome: Outcome,
		Refusal: Body{Code: code, Message: code.Message(), Detail: detail},
	}
}

// BadLine reports a line that failed to parse or was not an object.
func BadLine(line int, errText string) *Envelope {
	return New(BadInput, LineError{Line: line, Error: errText})
}

// BadMissingField reports a line lacking a required field.
func BadMissingField(line int, field string) *Envelope {
	return New(BadInput, MissingField{Line: line, MissingField: field})
}

// BadAlgorithm reports an algorithm name outside the supported set.
func BadAlgorithm(name string, err error) *Envelope {
	return New(BadInput, AlgorithmError{Algorithm: name, Error: err.Error()})
}

// StreamFailure reports an input or output failure.
func StreamFailure(err error) *Envelope {
	return New(IO, StreamError{Error: err.Error()})
}

// WithNextCommand sets a suggested recovery command and returns e.
func (e *Envelope) WithNextCommand(cmd string) *Envelope {
	e.Refusal.NextCommand = &cmd
	return e
}

func (e *Envelope) Error() string {
	return fmt.Sprintf("%s: %s", e.Refusal.Code, e.Refusal.Message)
}

// Marshal renders the envelope as one compact JSON line without a trailing newline.
func (e *Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode refusal: %w", err)
	}
	return data, nil
}
