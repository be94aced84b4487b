// Package skills implements discovery and loading of skill bundles. A skill
// is a directory containing a SKILL.md file with YAML frontmatter (name,
// description, triggers, allowed-tools) plus optional scripts, references,
// and assets that specialize an AI coding assistant for a task.
package skills

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

const (
	// SkillFileName is the manifest file every skill bundle must contain.
	SkillFileName = "SKILL.md"

	// SourceStandalone marks skills discovered from a standalone skills directory.
	SourceStandalone = "standalone"
)

// Skill represents a discovered skill bundle.
type Skill struct {
	Name         string   // Unique name, plugin-prefixed for plugin skills ("org/repo/name")
	Description  string   // Brief description used for retrieval and recommendation
	Version      string   // Optional semantic version from frontmatter
	Triggers     []string // Keywords that should activate the skill
	AllowedTools []string // Tool patterns the skill is permitted to use
	Directory    string   // Full path to the skill directory
	Content      string   // Body of SKILL.md with the frontmatter stripped
	Source       string   // "standalone" or the providing plugin name ("org/repo")
}

// Metadata represents the YAML frontmatter in SKILL.md files.
type Metadata struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Version      string   `yaml:"version"`
	Triggers     []string `yaml:"triggers"`
	AllowedTools []string `yaml:"allowed-tools"`
}

// ResolveBaseDir substitutes the {baseDir} placeholder in the skill body with
// the absolute path of the skill directory.
func (s *Skill) ResolveBaseDir() string {
	abs, err := filepath.Abs(s.Directory)
	if err != nil {
		abs = s.Directory
	}
	return strings.ReplaceAll(s.Content, "{baseDir}", abs)
}

// AllowsTool reports whether the named tool matches the skill's allowed-tools
// patterns. A skill with no allowed-tools declares no restrictions and allows
// everything. Patterns support glob syntax, e.g. "Bash(git:*)" or "Read*".
func (s *Skill) AllowsTool(tool string) bool {
	if len(s.AllowedTools) == 0 {
		return true
	}
	for _, pattern := range s.AllowedTools {
		g, err := glob.Compile(pattern)
		if err != nil {
			// An unparseable pattern falls back to exact comparison
			if pattern == tool {
				return true
			}
			continue
		}
		if g.Match(tool) {
			return true
		}
	}
	return false
}

// WordCount returns the number of whitespace-separated words in the body.
func (s *Skill) WordCount() int {
	return len(strings.Fields(s.Content))
}

// MatchesKeyword reports whether the keyword occurs in the skill's name,
// description, or triggers, case-insensitively.
func (s *Skill) MatchesKeyword(keyword string) bool {
	return strings.Contains(s.SearchText(), strings.ToLower(keyword))
}

// SearchText returns the lowercased text keyword matching and recommendation
// scoring run over.
func (s *Skill) SearchText() string {
	parts := []string{s.Name, s.Description}
	parts = append(parts, s.Triggers...)
	return strings.ToLower(strings.Join(parts, " "))
}
