package pipeline

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
)

// ResolveWorkers turns the requested job count into an effective worker
// count: nil means one worker per logical CPU, zero means one.
func ResolveWorkers(requested *int) int {
	if requested == nil {
		return hardwareParallelism()
	}
	if *requested < 1 {
		return 1
	}
	return *requested
}

func hardwareParallelism() int {
	cores, err := cpu.CountsWithContext(context.Background(), true)
	if err != nil || cores < 1 {
		cores = runtime.NumCPU()
	}
	return max(cores, 1)
}
