// Package osutil provides small OS-level helpers: process group management
// for script execution and GitHub CLI availability checks used by the plugin
// installer.
package osutil

import (
	"os/exec"

	"github.com/pkg/errors"
)

// IsGHCLIInstalled reports whether the GitHub CLI is available on PATH.
func IsGHCLIInstalled() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

// IsGHAuthenticated reports whether the GitHub CLI has valid credentials.
func IsGHAuthenticated() bool {
	cmd := exec.Command("gh", "auth", "status")
	return cmd.Run() == nil
}

// ValidateGHCLI checks that the GitHub CLI is installed and authenticated.
func ValidateGHCLI() error {
	if !IsGHCLIInstalled() {
		return errors.New("gh CLI is not installed; install the GitHub CLI to manage plugins")
	}
	if !IsGHAuthenticated() {
		return errors.New("gh CLI is not authenticated; run 'gh auth login' first")
	}
	return nil
}
