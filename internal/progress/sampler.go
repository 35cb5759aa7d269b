package progress

import "time"

// Sampler suppresses progress events that arrive faster than the configured
// interval. The first call always passes.
type Sampler struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

// NewSampler constructs a sampler; a non-positive interval defaults to 250ms.
func NewSampler(interval time.Duration) *Sampler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sampler{interval: interval}
}

// ShouldEmit reports whether an event observed at now should be written.
func (s *Sampler) ShouldEmit(now time.Time) bool {
	if s == nil {
		return true
	}
	if !s.primed || now.Sub(s.last) >= s.interval {
		s.primed = true
		s.last = now
		return true
	}
	return false
}

// Reset forgets the last emission.
func (s *Sampler) Reset() {
	if s == nil {
		return
	}
	s.primed = false
	s.last = time.Time{}
}
