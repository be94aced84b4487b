//go:build windows

package osutil

import "os/exec"

// SetProcessGroup is a no-op on Windows; process groups are POSIX-only.
func SetProcessGroup(cmd *exec.Cmd) {}

// SetProcessGroupKill falls back to killing the direct child process.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}
