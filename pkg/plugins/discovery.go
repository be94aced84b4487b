package plugins

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"

	"github.com/skillet-cli/skillet/pkg/logger"
)

const (
	skillFileName  = "SKILL.md"
	pluginsSubdir  = "plugins"
	skillsSubdir   = "skills"
	commandsSubdir = "commands"
	agentsSubdir   = "agents"
	skilletDir     = ".skillet"

	// SourceStandalone marks items that live directly under a skills/,
	// commands/, or agents/ directory rather than inside a plugin.
	SourceStandalone = "standalone"
)

// Discovery handles plugin, command, and agent discovery from configured
// directories
type Discovery struct {
	baseDir string // ".skillet" or absolute path for repo-local
	homeDir string
}

// DiscoveryOption configures a Discovery instance
type DiscoveryOption func(*Discovery) error

// WithBaseDir sets a custom base directory (for testing)
func WithBaseDir(dir string) DiscoveryOption {
	return func(d *Discovery) error {
		d.baseDir = dir
		return nil
	}
}

// WithHomeDir sets a custom home directory (for testing)
func WithHomeDir(dir string) DiscoveryOption {
	return func(d *Discovery) error {
		d.homeDir = dir
		return nil
	}
}

// NewDiscovery creates a new plugin discovery instance
func NewDiscovery(opts ...DiscoveryOption) (*Discovery, error) {
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

// CommandDirs returns the command discovery directories with prefix info in
// precedence order: repo-local standalone, repo-local plugins, global
// standalone, global plugins.
func (d *Discovery) CommandDirs() []DirConfig {
	return d.itemDirs(commandsSubdir)
}

// AgentDirs returns the agent discovery directories with prefix info in
// precedence order.
func (d *Discovery) AgentDirs() []DirConfig {
	return d.itemDirs(agentsSubdir)
}

func (d *Discovery) itemDirs(subdir string) []DirConfig {
	dirs := []DirConfig{
		{Dir: filepath.Join(d.baseDir, subdir)},
	}

	dirs = append(dirs, d.pluginItemDirs(d.baseDir, subdir)...)

	dirs = append(dirs, DirConfig{Dir: filepath.Join(d.homeDir, skilletDir, subdir)})

	dirs = append(dirs, d.pluginItemDirs(filepath.Join(d.homeDir, skilletDir), subdir)...)

	return dirs
}

// pluginItemDirs returns subdir directories from all plugins under baseDir.
// Plugin directories use "org@repo" naming format.
func (d *Discovery) pluginItemDirs(baseDir, subdir string) []DirConfig {
	pluginsDir := filepath.Join(baseDir, pluginsSubdir)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return nil
	}

	var dirs []DirConfig
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		itemDir := filepath.Join(pluginsDir, entry.Name(), subdir)
		if _, err := os.Stat(itemDir); err == nil {
			dirs = append(dirs, DirConfig{
				Dir:    itemDir,
				Prefix: pluginNameToPrefix(entry.Name()),
			})
		}
	}
	return dirs
}

// DiscoverCommands discovers all commands with proper naming and precedence.
// Command ids mirror their path under the commands directory, so
// commands/git/fixup.md becomes "git/fixup". First name wins.
func (d *Discovery) DiscoverCommands(ctx context.Context) (map[string]*Item, error) {
	return d.discoverItems(ctx, ItemTypeCommand, d.CommandDirs())
}

// DiscoverAgents discovers all agents with proper naming and precedence.
func (d *Discovery) DiscoverAgents(ctx context.Context) (map[string]*Item, error) {
	return d.discoverItems(ctx, ItemTypeAgent, d.AgentDirs())
}

func (d *Discovery) discoverItems(ctx context.Context, itemType ItemType, dirs []DirConfig) (map[string]*Item, error) {
	items := make(map[string]*Item)

	for _, dc := range dirs {
		found, err := d.discoverItemsFromDir(dc.Dir, dc.Prefix, itemType)
		if err != nil {
			logger.G(ctx).WithError(err).WithField("dir", dc.Dir).Debug("failed to discover plugin items")
			continue
		}
		for _, item := range found {
			if _, exists := items[item.Name]; !exists {
				items[item.Name] = item
			}
		}
	}

	return items, nil
}

// discoverItemsFromDir walks a directory for markdown files with optional
// name prefix. Nested directories contribute to the item id.
func (d *Discovery) discoverItemsFromDir(dir, prefix string, itemType ItemType) ([]*Item, error) {
	var items []*Item

	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}

		name := filepath.ToSlash(strings.TrimSuffix(relPath, ".md"))
		if prefix != "" {
			name = prefix + name
		}

		source := SourceStandalone
		if prefix != "" {
			source = strings.TrimSuffix(prefix, "/")
		}

		items = append(items, &Item{
			Name:        name,
			Description: readDescription(path),
			Path:        path,
			Type:        itemType,
			Source:      source,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

// readDescription extracts the description field from a markdown file's
// frontmatter. Files without frontmatter are fine; the description is
// simply empty.
func readDescription(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	pctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return ""
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return ""
	}

	description, _ := metaData["description"].(string)
	return description
}

// ListInstalledPlugins returns all installed plugin bundles from the
// specified location. Plugin directories use "org@repo" naming format.
func (d *Discovery) ListInstalledPlugins(global bool) ([]InstalledPlugin, error) {
	var baseDir string
	if global {
		baseDir = filepath.Join(d.homeDir, skilletDir)
	} else {
		baseDir = d.baseDir
	}

	pluginsDir := filepath.Join(baseDir, pluginsSubdir)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var plugins []InstalledPlugin
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		pluginPath := filepath.Join(pluginsDir, entry.Name())
		plugin := InstalledPlugin{
			Name: entry.Name(),
			Path: pluginPath,
		}

		plugin.Skills = listSkillNames(filepath.Join(pluginPath, skillsSubdir))
		plugin.Commands = listMarkdownNames(filepath.Join(pluginPath, commandsSubdir))
		plugin.Agents = listMarkdownNames(filepath.Join(pluginPath, agentsSubdir))

		if len(plugin.Skills) == 0 && len(plugin.Commands) == 0 && len(plugin.Agents) == 0 {
			continue
		}

		plugins = append(plugins, plugin)
	}

	return plugins, nil
}

// listSkillNames returns the skill directory names that contain a SKILL.md
func listSkillNames(skillsDir string) []string {
	entries, err := os.ReadDir(skillsDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		skillPath := filepath.Join(skillsDir, entry.Name(), skillFileName)
		if _, err := os.Stat(skillPath); err == nil {
			names = append(names, entry.Name())
		}
	}
	return names
}

// listMarkdownNames returns the ids of markdown files under dir, recursively
func listMarkdownNames(dir string) []string {
	var names []string
	_ = filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		if !strings.HasSuffix(entry.Name(), ".md") {
			return nil
		}
		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return nil
		}
		names = append(names, filepath.ToSlash(strings.TrimSuffix(relPath, ".md")))
		return nil
	})
	return names
}
