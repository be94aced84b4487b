package skills

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/logger"
)

const (
	skilletDir    = ".skillet"
	skillsSubdir  = "skills"
	pluginsSubdir = "plugins"
)

// Discovery handles skill discovery from configured directories.
type Discovery struct {
	baseDir   string // repo-local base, ".skillet" unless overridden
	homeDir   string
	extraDirs []string // explicit skill directories, scanned before everything else
}

// Option configures a Discovery instance.
type Option func(*Discovery) error

// WithBaseDir sets a custom repo-local base directory.
func WithBaseDir(dir string) Option {
	return func(d *Discovery) error {
		d.baseDir = dir
		return nil
	}
}

// WithHomeDir sets a custom home directory.
func WithHomeDir(dir string) Option {
	return func(d *Discovery) error {
		d.homeDir = dir
		return nil
	}
}

// WithSkillDirs prepends explicit skill directories to the scan order.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		d.extraDirs = append(d.extraDirs, dirs...)
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance.
func NewDiscovery(opts ...Option) (*Discovery, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}

	d := &Discovery{
		baseDir: skilletDir,
		homeDir: homeDir,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// sourceDir pairs a skills directory with the name prefix and source label of
// the plugin providing it (empty for standalone directories).
type sourceDir struct {
	dir    string
	prefix string
	source string
}

// sourceDirs returns all skill directories in precedence order: explicit dirs,
// repo-local standalone, repo-local plugins, global standalone, global plugins.
func (d *Discovery) sourceDirs() []sourceDir {
	var dirs []sourceDir

	for _, dir := range d.extraDirs {
		dirs = append(dirs, sourceDir{dir: dir, source: SourceStandalone})
	}

	dirs = append(dirs, sourceDir{
		dir:    filepath.Join(d.baseDir, skillsSubdir),
		source: SourceStandalone,
	})
	dirs = append(dirs, d.pluginSkillDirs(d.baseDir)...)

	globalBase := filepath.Join(d.homeDir, skilletDir)
	dirs = append(dirs, sourceDir{
		dir:    filepath.Join(globalBase, skillsSubdir),
		source: SourceStandalone,
	})
	dirs = append(dirs, d.pluginSkillDirs(globalBase)...)

	return dirs
}

// pluginSkillDirs returns skill directories from all plugins under baseDir.
// Plugin directories use "org@repo" naming; their skills are prefixed "org/repo/".
func (d *Discovery) pluginSkillDirs(baseDir string) []sourceDir {
	pluginsDir := filepath.Join(baseDir, pluginsSubdir)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return nil
	}

	var dirs []sourceDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillDir := filepath.Join(pluginsDir, entry.Name(), skillsSubdir)
		if _, err := os.Stat(skillDir); err != nil {
			continue
		}
		source := strings.Replace(entry.Name(), "@", "/", 1)
		dirs = append(dirs, sourceDir{
			dir:    skillDir,
			prefix: source + "/",
			source: source,
		})
	}
	return dirs
}

// DiscoverSkills finds all available skills from the configured directories.
// The first occurrence of a name wins; malformed bundles are skipped.
func (d *Discovery) DiscoverSkills(ctx context.Context) (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, src := range d.sourceDirs() {
		d.discoverFromDir(ctx, src, skills)
	}

	return skills, nil
}

func (d *Discovery) discoverFromDir(ctx context.Context, src sourceDir, skills map[string]*Skill) {
	entries, err := os.ReadDir(src.dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		entryPath := filepath.Join(src.dir, entry.Name())

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		skillPath := filepath.Join(entryPath, SkillFileName)
		skill, err := LoadSkill(skillPath)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("path", skillPath).Debug("skipping malformed skill")
			continue
		}

		name := skill.Name
		if src.prefix != "" {
			name = src.prefix + skill.Name
		}

		if _, exists := skills[name]; !exists {
			skill.Name = name
			skill.Source = src.source
			skills[name] = skill
		}
	}
}

// LoadSkill loads a single skill bundle from its SKILL.md path.
func LoadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	m, body, err := ParseSkillFile(content)
	if err != nil {
		return nil, err
	}

	return &Skill{
		Name:         m.Name,
		Description:  m.Description,
		Version:      m.Version,
		Triggers:     m.Triggers,
		AllowedTools: m.AllowedTools,
		Directory:    filepath.Dir(path),
		Content:      body,
		Source:       SourceStandalone,
	}, nil
}

// GetSkill returns a specific skill by name.
func (d *Discovery) GetSkill(ctx context.Context, name string) (*Skill, error) {
	skills, err := d.DiscoverSkills(ctx)
	if err != nil {
		return nil, err
	}

	skill, exists := skills[name]
	if !exists {
		return nil, errors.Errorf("skill '%s' not found", name)
	}

	return skill, nil
}

// ListSkillNames returns the sorted names of all available skills.
func (d *Discovery) ListSkillNames(ctx context.Context) ([]string, error) {
	skills, err := d.DiscoverSkills(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}

// FilterByAllowlist filters skills by an allowlist of names.
// If the allowlist is empty, all skills are returned.
func FilterByAllowlist(skills map[string]*Skill, allowed []string) map[string]*Skill {
	if len(allowed) == 0 {
		return skills
	}

	filtered := make(map[string]*Skill)
	for _, name := range allowed {
		if skill, exists := skills[name]; exists {
			filtered[name] = skill
		}
	}
	return filtered
}
