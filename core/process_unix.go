//go:build !windows

package core

import (
	"errors"
	"os"
	"syscall"
)

// isProcessAlive reports whether a lock holder with the given PID still
// runs. Signal 0 probes without delivering anything; EPERM means the
// process exists but belongs to another user.
func isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	err = process.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}
