// Package plugins provides the plugin bundle system: discovery of installed
// bundles and of the commands and agents they ship, plus installation and
// removal of bundles from GitHub repositories. A plugin is a repository
// containing skills/, commands/, and/or agents/ directories.
package plugins

// ItemType identifies what kind of entry a plugin provides.
type ItemType string

// Plugin item types
const (
	ItemTypeSkill   ItemType = "skill"
	ItemTypeCommand ItemType = "command"
	ItemTypeAgent   ItemType = "agent"
)

// Item is a discovered command or agent. Skills carry more structure and live
// in the skills package; commands and agents are plain markdown files with
// optional frontmatter.
type Item struct {
	Name        string   // Plugin-prefixed name ("org/repo/name") for plugin items
	Description string   // From frontmatter, may be empty
	Path        string   // Full path to the markdown file
	Type        ItemType // command or agent
	Source      string   // "standalone" or the providing plugin ("org/repo")
}

// InstalledPlugin represents an installed bundle and its contents.
type InstalledPlugin struct {
	Name     string   // Directory name in "org@repo" format
	Path     string   // Full path to the plugin directory
	Skills   []string // Skill names contained in this plugin
	Commands []string // Command ids contained in this plugin
	Agents   []string // Agent names contained in this plugin
}

// DirConfig pairs a directory with the prefix prepended to discovered item
// names, used for plugin-based discovery.
type DirConfig struct {
	Dir    string
	Prefix string
}
