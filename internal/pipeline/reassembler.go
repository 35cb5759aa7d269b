package pipeline

import "slices"

// Reassembler releases values in ascending index order from submissions that
// arrive in any order. It is not safe for concurrent use.
type Reassembler[T any] struct {
	next    int
	pending map[int]T
}

// NewReassembler returns a reassembler expecting index 0 first.
func NewReassembler[T any]() *Reassembler[T] {
	return &Reassembler[T]{pending: make(map[int]T)}
}

// Submit buffers value at index and returns the maximal contiguous run
// starting at the next expected index, which may be empty.
func (r *Reassembler[T]) Submit(index int, value T) []T {
	if index < r.next {
		return nil
	}
	r.pending[index] = value

	var ready []T
	for {
		v, ok := r.pending[r.next]
		if !ok {
			break
		}
		delete(r.pending, r.next)
		ready = append(ready, v)
		r.next++
	}
	return ready
}

// Drain releases every buffered value in ascending index order, skipping
// gaps, and leaves the reassembler empty.
func (r *Reassembler[T]) Drain() []T {
	if len(r.pending) == 0 {
		return nil
	}
	indices := make([]int, 0, len(r.pending))
	for idx := range r.pending {
		indices = append(indices, idx)
	}
	slices.Sort(indices)

	out := make([]T, 0, len(indices))
	for _, idx := range indices {
		out = append(out, r.pending[idx])
		delete(r.pending, idx)
	}
	r.next = indices[len(indices)-1] + 1
	return out
}

// Pending reports how many values are buffered awaiting an earlier index.
func (r *Reassembler[T]) Pending() int {
	return len(r.pending)
}

// Next is the index that must arrive before anything else is released.
func (r *Reassembler[T]) Next() int {
	return r.next
}
