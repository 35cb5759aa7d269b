// Package progress writes machine-readable run progress to stderr.
//
// Events are single-line JSON objects. Progress events are throttled by a
// Sampler; the final event and every warning are always written.
package progress

import (
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"hashstage/internal/buildinfo"
)

// DefaultInterval is the minimum spacing between sampled progress events.
const DefaultInterval = 250 * time.Millisecond

// Event reports how many records have been emitted out of those read so far.
type Event struct {
	Type      string  `json:"type"`
	Tool      string  `json:"tool"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
	ElapsedMS int64   `json:"elapsed_ms"`
}

// Warning reports a record that was skipped because its file could not be read.
type Warning struct {
	Type    string `json:"type"`
	Tool    string `json:"tool"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// NewEvent builds a progress event; percent is zero while total is zero.
func NewEvent(processed, total int, elapsed time.Duration) Event {
	percent := 0.0
	if total > 0 {
		percent = float64(processed) / float64(total) * 100
	}
	return Event{
		Type:      "progress",
		Tool:      buildinfo.Tool,
		Processed: processed,
		Total:     total,
		Percent:   percent,
		ElapsedMS: elapsed.Milliseconds(),
	}
}

// NewWarning builds a skip warning for path.
func NewWarning(path, errText string) Warning {
	return Warning{
		Type:    "warning",
		Tool:    buildinfo.Tool,
		Path:    path,
		Message: "skipped: " + errText,
	}
}

// Reporter serialises events to a writer. A nil *Reporter discards everything,
// so callers never need to check whether progress is enabled.
type Reporter struct {
	mu      sync.Mutex
	w       io.Writer
	sampler *Sampler
	start   time.Time
	now     func() time.Time
}

// NewReporter starts the elapsed clock immediately.
func NewReporter(w io.Writer, interval time.Duration) *Reporter {
	r := &Reporter{w: w, sampler: NewSampler(interval), now: time.Now}
	r.start = r.now()
	return r
}

// Progress writes a progress event unless one was written too recently.
func (r *Reporter) Progress(processed, total int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if !r.sampler.ShouldEmit(now) {
		return
	}
	r.write(NewEvent(processed, total, now.Sub(r.start)))
}

// Finish writes the closing progress event unconditionally.
func (r *Reporter) Finish(processed, total int) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(NewEvent(processed, total, r.now().Sub(r.start)))
}

// Warn writes a skip warning.
func (r *Reporter) Warn(path, errText string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.write(NewWarning(path, errText))
}

// write drops encoding and write errors: progress is advisory and must never
// affect the data stream.
func (r *Reporter) write(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	data = append(data, '\n')
	_, _ = r.w.Write(data)
}
