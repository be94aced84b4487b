// Package runner executes skill scripts. A script runs with the skill
// directory as its working directory, inherits stdio, and its exit code is
// reported back so the CLI can propagate it verbatim.
package runner

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/osutil"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// SkillDirEnv is exported to the child so scripts can locate their bundle
// without {baseDir} substitution.
const SkillDirEnv = "SKILLET_SKILL_DIR"

// ResolveScript picks the script to run for a skill. With an empty name the
// skill must bundle exactly one script; otherwise the name is matched against
// script basenames, with or without extension.
func ResolveScript(skill *skills.Skill, name string) (string, error) {
	res, err := skill.Resources()
	if err != nil {
		return "", errors.Wrap(err, "failed to enumerate skill scripts")
	}

	if len(res.Scripts) == 0 {
		return "", errors.Errorf("skill '%s' has no scripts", skill.Name)
	}

	if name == "" {
		if len(res.Scripts) > 1 {
			return "", errors.Errorf("skill '%s' has %d scripts, specify one of: %s",
				skill.Name, len(res.Scripts), strings.Join(res.Scripts, ", "))
		}
		return res.Scripts[0], nil
	}

	for _, script := range res.Scripts {
		base := filepath.Base(script)
		if base == name || strings.TrimSuffix(base, filepath.Ext(base)) == name {
			return script, nil
		}
	}

	return "", errors.Errorf("script '%s' not found in skill '%s' (available: %s)",
		name, skill.Name, strings.Join(res.Scripts, ", "))
}

// Run executes the named script of a skill with the given arguments and
// returns the child's exit code. The script must be a regular executable
// file inside the bundle.
func Run(ctx context.Context, skill *skills.Skill, scriptName string, args []string) (int, error) {
	script, err := ResolveScript(skill, scriptName)
	if err != nil {
		return 0, err
	}

	// Discovery may yield a relative directory for repo-local skills; the
	// child's working directory and SKILLET_SKILL_DIR must be absolute
	skillDir, err := filepath.Abs(skill.Directory)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve skill directory %s", skill.Directory)
	}

	scriptPath := filepath.Join(skillDir, filepath.FromSlash(script))
	info, err := os.Stat(scriptPath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to stat script %s", script)
	}
	if info.Mode()&0o111 == 0 {
		return 0, errors.Errorf("script %s is not executable", script)
	}

	logger.G(ctx).WithFields(map[string]interface{}{
		"skill":  skill.Name,
		"script": script,
	}).Debug("running skill script")

	cmd := exec.CommandContext(ctx, scriptPath, args...)
	cmd.Dir = skillDir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(), SkillDirEnv+"="+skillDir)

	// Run the child in its own process group so cancellation reaches any
	// grandchildren it spawns
	osutil.SetProcessGroup(cmd)
	osutil.SetProcessGroupKill(cmd)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, errors.Wrapf(err, "failed to run script %s", script)
	}

	return 0, nil
}
