package pipeline

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"hashstage/internal/logging"
)

// MaxWorkers is the largest worker count run in parallel. Every worker can sit
// in a blocking file read that pins an OS thread, so far larger counts would
// approach the runtime's thread ceiling; such requests run sequentially.
const MaxWorkers = 4096

// Indexed pairs a work item's sequence index with what fn produced for it.
type Indexed[R any] struct {
	Index int
	Value R
}

// Dispatch applies fn to every item using up to workers goroutines and
// returns the results in completion order. With one worker, items run inline
// in index order.
func Dispatch[T, R any](items []T, workers int, fn func(T) R) []Indexed[R] {
	out := make([]Indexed[R], 0, len(items))
	if len(items) == 0 {
		return out
	}
	pool := NewPool(context.Background(), workers, fn, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for res := range pool.Results() {
			out = append(out, res)
		}
	}()
	for i, item := range items {
		_ = pool.Submit(i, item)
	}
	pool.Close()
	<-done
	return out
}

// Pool is a streaming bounded worker pool. Submit blocks while every worker is
// busy, so memory stays proportional to the worker count rather than the
// input size.
type Pool[T, R any] struct {
	ctx        context.Context
	fn         func(T) R
	group      *errgroup.Group
	sequential bool
	results    chan Indexed[R]
}

// NewPool negotiates the execution mode for workers and starts accepting
// submissions. Counts of one or less run inline on the submitting goroutine;
// counts above MaxWorkers are refused parallel mode and also run inline.
// Cancelling ctx makes pending result sends give up.
func NewPool[T, R any](ctx context.Context, workers int, fn func(T) R, logger *slog.Logger) *Pool[T, R] {
	p := &Pool[T, R]{ctx: ctx, fn: fn}
	switch {
	case workers <= 1:
		p.sequential = true
	case workers > MaxWorkers:
		logging.WarnWithContext(logger, "parallel worker pool refused; hashing sequentially", "worker_pool_fallback",
			logging.Int("requested_workers", workers),
			logging.Int("max_workers", MaxWorkers),
			logging.String(logging.FieldErrorHint, "lower --jobs"),
			logging.String(logging.FieldImpact, "records are hashed one at a time"),
		)
		p.sequential = true
	default:
		p.group = new(errgroup.Group)
		p.group.SetLimit(workers)
	}
	buffer := 1
	if !p.sequential {
		buffer = workers
	}
	p.results = make(chan Indexed[R], buffer)
	return p
}

// Sequential reports whether the pool runs work inline.
func (p *Pool[T, R]) Sequential() bool {
	return p.sequential
}

// Submit schedules fn(item) for index. It returns the context error once the
// pool's context is cancelled.
func (p *Pool[T, R]) Submit(index int, item T) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	if p.sequential {
		p.deliver(index, p.fn(item))
		return p.ctx.Err()
	}
	p.group.Go(func() error {
		if p.ctx.Err() != nil {
			return nil
		}
		p.deliver(index, p.fn(item))
		return nil
	})
	return nil
}

func (p *Pool[T, R]) deliver(index int, value R) {
	select {
	case p.results <- Indexed[R]{Index: index, Value: value}:
	case <-p.ctx.Done():
	}
}

// Results delivers completed work. It is closed by Close.
func (p *Pool[T, R]) Results() <-chan Indexed[R] {
	return p.results
}

// Close waits for in-flight work and closes the results channel. Submit must
// not be called afterwards.
func (p *Pool[T, R]) Close() {
	if p.group != nil {
		_ = p.group.Wait()
	}
	close(p.results)
}
