package pipeline

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolveWorkers(t *testing.T) {
	zero, three := 0, 3
	if got := ResolveWorkers(&zero); got != 1 {
		t.Fatalf("ResolveWorkers(0) = %d, want 1", got)
	}
	if got := ResolveWorkers(&three); got != 3 {
		t.Fatalf("ResolveWorkers(3) = %d, want 3", got)
	}
	if got := ResolveWorkers(nil); got < 1 {
		t.Fatalf("ResolveWorkers(nil) = %d, want >= 1", got)
	}
}

func TestDispatchCoversEveryItem(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}
	for _, workers := range []int{1, 4, 16} {
		results := Dispatch(items, workers, func(v int) int {
			time.Sleep(time.Duration(rand.IntN(200)) * time.Microsecond)
			return v * v
		})
		if len(results) != len(items) {
			t.Fatalf("workers=%d: got %d results", workers, len(results))
		}
		seen := make(map[int]bool)
		for _, res := range results {
			if res.Value != res.Index*res.Index {
				t.Fatalf("workers=%d: index %d carried %d", workers, res.Index, res.Value)
			}
			seen[res.Index] = true
		}
		if len(seen) != len(items) {
			t.Fatalf("workers=%d: duplicate indices", workers)
		}
	}
}

func TestDispatchSingleWorkerRunsInIndexOrder(t *testing.T) {
	results := Dispatch([]string{"a", "b", "c"}, 1, func(s string) string { return s })
	var indices []int
	for _, res := range results {
		indices = append(indices, res.Index)
	}
	if !slices.Equal(indices, []int{0, 1, 2}) {
		t.Fatalf("indices = %v", indices)
	}
}

func TestDispatchEmpty(t *testing.T) {
	if got := Dispatch([]int(nil), 4, func(v int) int { return v }); len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 3
	var running, peak atomic.Int32
	items := make([]int, 30)
	Dispatch(items, workers, func(int) int {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		running.Add(-1)
		return 0
	})
	if peak.Load() > workers {
		t.Fatalf("peak concurrency %d exceeds %d workers", peak.Load(), workers)
	}
}

func TestPoolFallsBackToSequentialAboveMaxWorkers(t *testing.T) {
	pool := NewPool(context.Background(), MaxWorkers+1, func(v int) int { return v }, nil)
	if !pool.Sequential() {
		t.Fatal("expected sequential fallback")
	}
	go func() {
		_ = pool.Submit(0, 7)
		pool.Close()
	}()
	var got []Indexed[int]
	for res := range pool.Results() {
		got = append(got, res)
	}
	if len(got) != 1 || got[0].Value != 7 {
		t.Fatalf("results = %v", got)
	}
}

func TestPoolSubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 2, func(v int) int { return v }, nil)
	cancel()
	if err := pool.Submit(0, 1); err == nil {
		t.Fatal("expected error after cancel")
	}
	pool.Close()
}
