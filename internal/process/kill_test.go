package process

// Notes:
// - Only invalid PIDs are exercised. Killing a real group is covered by the
//   measurer's browser cleanup; unit tests cannot safely terminate processes.
// - PID 0 would target the current process group, which is why
//   KillProcessGroup refuses non-positive PIDs.

import "testing"

func TestKillProcessGroup_InvalidPID(t *testing.T) {
	t.Parallel()

	for _, pid := range []int{0, -1, 999999999} {
		KillProcessGroup(pid)
	}
}
