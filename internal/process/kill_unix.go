//go:build !windows

// Package process cleans up browser process trees left behind by launchers.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group of pid, taking the
// browser's renderer and GPU helpers down with it.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() still runs afterwards
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
