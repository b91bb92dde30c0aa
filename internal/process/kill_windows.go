//go:build windows

// Package process cleans up browser process trees left behind by launchers.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup kills pid and its children using taskkill.
// /F = force kill, /T = terminate child processes (tree kill).
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Best-effort; launcher.Kill() still runs afterwards
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
