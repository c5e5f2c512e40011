// Package system adjusts process-level limits for long-running
// sessions.
package system

import (
	"log/slog"
	"syscall"
)

// InitResourceLimits raises the open-file limit so a long-running
// cycler with concurrent fetches and retries does not exhaust
// descriptors on conservative defaults.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("rlimit_read_failed", "error", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		slog.Warn("rlimit_raise_failed", "error", err)
		return
	}
	slog.Debug("rlimit_raised", "nofile", rLimit.Cur)
}
