//go:build linux

package process_linux

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"soulmem/process"
)

// ProcessExists reports whether the PID is still alive.
func ProcessExists(pid process.ProcessID) bool {
	_, err := os.Stat(filepath.Join("/proc", strconv.Itoa(int(pid))))
	if err == nil {
		return true
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	// For transient errors (permission, EIO): fall back to kill 0
	return syscall.Kill(int(pid), 0) == nil
}

// WaitExit waits until the PID disappears from /proc or until timeout.
// Returns true if the process exited within the timeout. Long-running
// pollers use this to notice the game shutting down and re-attach.
func WaitExit(pid process.ProcessID, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	tick := 25 * time.Millisecond
	for {
		if !ProcessExists(pid) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(tick)
		// Back off up to 250ms to reduce pressure on /proc
		if tick < 250*time.Millisecond {
			tick += 10 * time.Millisecond
		}
	}
}
