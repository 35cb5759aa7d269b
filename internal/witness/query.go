package witness

import (
	"fmt"
	"strings"
	"time"
)

// Query selects ledger records. Zero fields do not filter.
type Query struct {
	Tool      string
	Outcome   string
	Since     time.Time
	Until     time.Time
	InputHash string
	Limit     int
}

// ParseBound parses an RFC 3339 time bound; empty input yields the zero time.
func ParseBound(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time bound %q: expected RFC 3339", value)
	}
	return ts, nil
}

// Filter returns matching records most recent first. Records are assumed to
// be in append order. Time bounds are inclusive; a record without a parseable
// timestamp never satisfies a time bound.
func Filter(records []Record, q Query) []Record {
	out := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if !q.matches(rec) {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out
}

func (q Query) matches(rec Record) bool {
	if q.Tool != "" && rec.Tool != q.Tool {
		return false
	}
	if q.Outcome != "" && rec.Outcome != q.Outcome {
		return false
	}
	if q.InputHash != "" && (rec.OutputHash == "" || !strings.Contains(rec.OutputHash, q.InputHash)) {
		return false
	}
	if q.Since.IsZero() && q.Until.IsZero() {
		return true
	}
	ts, ok := rec.Time()
	if !ok {
		return false
	}
	if !q.Since.IsZero() && ts.Before(q.Since) {
		return false
	}
	if !q.Until.IsZero() && ts.After(q.Until) {
		return false
	}
	return true
}

// Last returns the most recently appended record.
func Last(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	return records[len(records)-1], true
}
