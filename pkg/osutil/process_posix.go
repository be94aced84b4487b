//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup configures the command to run in its own process group so
// the whole process tree can be killed on cancellation.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill sets up a cancel function that kills the entire process
// group. Must be called after SetProcessGroup and before cmd.Start().
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
