package plugins

import (
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/osutil"
)

// ValidateRepoName validates a GitHub repository name format.
// Expected format: "owner/repo" (e.g., "acme/toolkit").
// Returns an error if the format is invalid.
func ValidateRepoName(repo string) error {
	if repo == "" {
		return errors.New("repository name cannot be empty")
	}
	if !strings.Contains(repo, "/") {
		return errors.Errorf("invalid repository format %q: expected 'owner/repo'", repo)
	}
	parts := strings.SplitN(repo, "/", 2)
	if parts[0] == "" || parts[1] == "" {
		return errors.Errorf("invalid repository format %q: owner and repo cannot be empty", repo)
	}
	return nil
}

// repoToPluginName converts a GitHub repo path to a plugin name.
// Expected format: "owner/repo" (e.g., "acme/toolkit" -> "acme@toolkit").
// Only the first slash is replaced to handle nested paths correctly.
func repoToPluginName(repo string) string {
	if !strings.Contains(repo, "/") {
		return repo
	}
	return strings.Replace(repo, "/", "@", 1)
}

// pluginNameToPrefix converts a plugin name to an item name prefix
// e.g., "acme@toolkit" -> "acme/toolkit/"
func pluginNameToPrefix(name string) string {
	return strings.Replace(name, "@", "/", 1) + "/"
}

// PluginNameToUserFacing converts "org@repo" directory format to "org/repo"
// user-facing format.
func PluginNameToUserFacing(pluginName string) string {
	return strings.Replace(pluginName, "@", "/", 1)
}

// Installer handles plugin installation from GitHub repositories
type Installer struct {
	global    bool
	force     bool
	targetDir string
	homeDir   string
}

// InstallerOption configures an Installer instance
type InstallerOption func(*Installer)

// WithGlobal installs plugins to the global directory
func WithGlobal(global bool) InstallerOption {
	return func(i *Installer) {
		i.global = global
	}
}

// WithForce overwrites existing plugins
func WithForce(force bool) InstallerOption {
	return func(i *Installer) {
		i.force = force
	}
}

// NewInstaller creates a new plugin installer
func NewInstaller(opts ...InstallerOption) (*Installer, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get home directory")
	}

	i := &Installer{
		homeDir: homeDir,
	}

	for _, opt := range opts {
		opt(i)
	}

	if i.global {
		i.targetDir = filepath.Join(homeDir, skilletDir)
	} else {
		i.targetDir = skilletDir
	}

	return i, nil
}

// InstallResult contains information about installed plugin contents
type InstallResult struct {
	PluginName string
	Skills     []string
	Commands   []string
	Agents     []string
}

// Install installs a plugin bundle from a GitHub repository. The repository
// is cloned shallowly with gh, and its skills/, commands/, and agents/
// directories are copied under plugins/org@repo/.
func (i *Installer) Install(ctx context.Context, repo string, ref string) (*InstallResult, error) {
	if err := ValidateRepoName(repo); err != nil {
		return nil, err
	}

	if err := osutil.ValidateGHCLI(); err != nil {
		return nil, err
	}

	tempDir, err := i.cloneRepo(ctx, repo, ref)
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tempDir)

	// Use org@repo format to avoid collisions and nested directories
	// e.g., "acme/toolkit" becomes "acme@toolkit"
	pluginName := repoToPluginName(repo)

	pluginDir := filepath.Join(i.targetDir, pluginsSubdir, pluginName)
	if err := i.checkExisting(pluginDir); err != nil {
		return nil, err
	}

	result := &InstallResult{
		PluginName: pluginName,
	}

	skillsDir := filepath.Join(tempDir, skillsSubdir)
	if skillDirs, err := i.findSkills(skillsDir); err == nil && len(skillDirs) > 0 {
		destSkillsDir := filepath.Join(pluginDir, skillsSubdir)
		if err := os.MkdirAll(destSkillsDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create skills directory")
		}
		for _, skillDir := range skillDirs {
			skillName := filepath.Base(skillDir)
			if err := i.copyDir(skillDir, filepath.Join(destSkillsDir, skillName)); err != nil {
				return nil, errors.Wrapf(err, "failed to install skill %s", skillName)
			}
			result.Skills = append(result.Skills, skillName)
		}
	}

	commandsDir := filepath.Join(tempDir, commandsSubdir)
	if commandFiles, err := i.findMarkdown(commandsDir); err == nil && len(commandFiles) > 0 {
		destCommandsDir := filepath.Join(pluginDir, commandsSubdir)
		if err := os.MkdirAll(destCommandsDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create commands directory")
		}
		for _, commandFile := range commandFiles {
			if err := i.installMarkdown(commandFile, commandsDir, destCommandsDir); err != nil {
				relPath, _ := filepath.Rel(commandsDir, commandFile)
				return nil, errors.Wrapf(err, "failed to install command %s", relPath)
			}
			relPath, _ := filepath.Rel(commandsDir, commandFile)
			result.Commands = append(result.Commands, filepath.ToSlash(strings.TrimSuffix(relPath, ".md")))
		}
	}

	agentsDir := filepath.Join(tempDir, agentsSubdir)
	if agentFiles, err := i.findMarkdown(agentsDir); err == nil && len(agentFiles) > 0 {
		destAgentsDir := filepath.Join(pluginDir, agentsSubdir)
		if err := os.MkdirAll(destAgentsDir, 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create agents directory")
		}
		for _, agentFile := range agentFiles {
			if err := i.installMarkdown(agentFile, agentsDir, destAgentsDir); err != nil {
				relPath, _ := filepath.Rel(agentsDir, agentFile)
				return nil, errors.Wrapf(err, "failed to install agent %s", relPath)
			}
			relPath, _ := filepath.Rel(agentsDir, agentFile)
			result.Agents = append(result.Agents, filepath.ToSlash(strings.TrimSuffix(relPath, ".md")))
		}
	}

	if len(result.Skills) == 0 && len(result.Commands) == 0 && len(result.Agents) == 0 {
		os.RemoveAll(pluginDir)
		return nil, errors.New("no plugin content found in repository (expected skills/, commands/, or agents/ directories)")
	}

	return result, nil
}

// cloneRepo clones the repository into a temp directory with gh, retrying
// transient failures.
func (i *Installer) cloneRepo(ctx context.Context, repo, ref string) (string, error) {
	tempDir, err := os.MkdirTemp("", "skillet-plugin-*")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp directory")
	}

	args := []string{"repo", "clone", repo, tempDir}
	if ref != "" {
		args = append(args, "--", "--branch", ref, "--depth", "1")
	} else {
		args = append(args, "--", "--depth", "1")
	}

	err = retry.Do(
		func() error {
			// The target must be empty for each attempt
			if err := os.RemoveAll(tempDir); err != nil {
				return retry.Unrecoverable(err)
			}

			cmd := exec.CommandContext(ctx, "gh", args...)
			output, err := cmd.CombinedOutput()
			if err != nil {
				return errors.Wrapf(err, "failed to clone repository: %s", string(output))
			}
			return nil
		},
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithField("attempt", n+1).Warn("retrying plugin clone")
		}),
	)
	if err != nil {
		os.RemoveAll(tempDir)
		return "", err
	}

	return tempDir, nil
}

func (i *Installer) findSkills(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var skills []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(skillPath, skillFileName)); err == nil {
			skills = append(skills, skillPath)
		}
	}
	return skills, nil
}

func (i *Installer) findMarkdown(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// installMarkdown copies a markdown file preserving its path relative to root
func (i *Installer) installMarkdown(srcPath, root, destDir string) error {
	relPath, err := filepath.Rel(root, srcPath)
	if err != nil {
		return err
	}

	destPath := filepath.Join(destDir, relPath)

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return err
	}

	return i.copyFile(srcPath, destPath)
}

func (i *Installer) checkExisting(path string) error {
	if _, err := os.Stat(path); err == nil {
		if !i.force {
			return errors.Errorf("plugin already exists at %s (use --force to overwrite)", path)
		}
		if err := os.RemoveAll(path); err != nil {
			return errors.Wrap(err, "failed to remove existing plugin")
		}
	}
	return nil
}

func (i *Installer) copyDir(src, dst string) error {
	if i.force {
		os.RemoveAll(dst)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		destPath := filepath.Join(dst, relPath)

		if info.IsDir() {
			return os.MkdirAll(destPath, info.Mode())
		}

		return i.copyFile(path, destPath)
	})
}

func (i *Installer) copyFile(src, dst string) error {
	if i.force {
		os.Remove(dst)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

// Remover handles plugin removal
type Remover struct {
	global  bool
	baseDir string
}

// NewRemover creates a new plugin remover
func NewRemover(opts ...InstallerOption) (*Remover, error) {
	i := &Installer{}
	for _, opt := range opts {
		opt(i)
	}

	r := &Remover{
		global: i.global,
	}

	if r.global {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get home directory")
		}
		r.baseDir = filepath.Join(homeDir, skilletDir)
	} else {
		r.baseDir = skilletDir
	}

	return r, nil
}

// Remove removes a plugin by name.
// Accepts both "org/repo" format (converted to "org@repo") and direct
// "org@repo" format.
func (r *Remover) Remove(name string) error {
	pluginName := name
	if strings.Contains(name, "/") {
		pluginName = repoToPluginName(name)
	}

	pluginPath := filepath.Join(r.baseDir, pluginsSubdir, pluginName)

	if _, err := os.Stat(pluginPath); os.IsNotExist(err) {
		return errors.Errorf("plugin '%s' not found", name)
	}

	if err := os.RemoveAll(pluginPath); err != nil {
		return errors.Wrap(err, "failed to remove plugin")
	}

	return nil
}

// ListPlugins returns all installed plugin names in "org/repo" user-facing
// format.
func (r *Remover) ListPlugins() ([]string, error) {
	pluginsDir := filepath.Join(r.baseDir, pluginsSubdir)

	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var plugins []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(pluginsDir, entry.Name())
		hasContent := false
		for _, subdir := range []string{skillsSubdir, commandsSubdir, agentsSubdir} {
			if _, err := os.Stat(filepath.Join(pluginPath, subdir)); err == nil {
				hasContent = true
				break
			}
		}

		if hasContent {
			plugins = append(plugins, PluginNameToUserFacing(entry.Name()))
		}
	}

	return plugins, nil
}
