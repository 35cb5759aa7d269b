package pipeline

// Outcome is the run-level result. Values are ordered by severity; Merge keeps
// the more severe one.
type Outcome int

const (
	AllHashed Outcome = iota
	Partial
	Refusal
)

func (o Outcome) String() string {
	switch o {
	case Partial:
		return "PARTIAL"
	case Refusal:
		return "REFUSAL"
	default:
		return "ALL_HASHED"
	}
}

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	return int(o)
}

// Merge returns the more severe of o and other.
func (o Outcome) Merge(other Outcome) Outcome {
	if other > o {
		return other
	}
	return o
}
