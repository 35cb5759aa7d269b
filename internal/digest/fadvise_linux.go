//go:build linux

package digest

import (
	"os"

	"golang.org/x/sys/unix"
)

// adviseSequential hints the kernel to read ahead aggressively. Best effort.
func adviseSequential(f *os.File) {
	_ = unix.Fadvise(int(f.Fd()), 0, 0, unix.FADV_SEQUENTIAL)
}
