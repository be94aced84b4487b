package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/presenter"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// listEntry is the list command's row shape, shared by table and JSON output
type listEntry struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered skills, commands, and agents",
	Long: `List everything discovered from repo-local and global directories.

The --tool and --name filters apply to skills only and hide commands and
agents. --query matches skill names, descriptions, and triggers; for
commands and agents it matches names and descriptions.

Examples:
  skillet list                       # Everything
  skillet list --type skill          # Skills only
  skillet list --source standalone   # Hide plugin-provided entries
  skillet list --query git           # Filter by keyword
  skillet list --tool "Bash(git:*)"  # Skills whose allowed-tools permit a tool
  skillet list --name pdf-tools --name git-commit
  skillet list --json                # Machine-readable output
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		typeFilter, _ := cmd.Flags().GetString("type")
		sourceFilter, _ := cmd.Flags().GetString("source")
		query, _ := cmd.Flags().GetString("query")
		toolFilter, _ := cmd.Flags().GetString("tool")
		nameFilter, _ := cmd.Flags().GetStringSlice("name")
		asJSON, _ := cmd.Flags().GetBool("json")

		skillDiscovery, pluginDiscovery, err := newDiscoveries()
		if err != nil {
			return err
		}

		// allowed-tools and skill allowlists only make sense for skills
		skillsOnly := toolFilter != "" || len(nameFilter) > 0

		var entries []listEntry

		if typeFilter == "" || typeFilter == "skill" {
			discovered, err := skillDiscovery.DiscoverSkills(cmd.Context())
			if err != nil {
				return err
			}
			entries = append(entries, skillListEntries(discovered, nameFilter, toolFilter, query, sourceFilter)...)
		}

		if !skillsOnly && (typeFilter == "" || typeFilter == "command") {
			items, err := pluginDiscovery.DiscoverCommands(cmd.Context())
			if err != nil {
				return err
			}
			entries = append(entries, filterEntries(itemListEntries(items), sourceFilter, query)...)
		}

		if !skillsOnly && (typeFilter == "" || typeFilter == "agent") {
			items, err := pluginDiscovery.DiscoverAgents(cmd.Context())
			if err != nil {
				return err
			}
			entries = append(entries, filterEntries(itemListEntries(items), sourceFilter, query)...)
		}

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].Type != entries[j].Type {
				return entries[i].Type < entries[j].Type
			}
			return entries[i].Name < entries[j].Name
		})

		if asJSON {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			presenter.Info("Nothing discovered")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TYPE\tNAME\tSOURCE\tDESCRIPTION")
		for _, entry := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", entry.Type, entry.Name, entry.Source, truncate(entry.Description, 60))
		}
		return tw.Flush()
	},
}

// skillListEntries converts discovered skills to list rows, applying the
// skill-specific filters: the --name allowlist, allowed-tools matching for
// --tool, and keyword matching over name/description/triggers for --query.
func skillListEntries(discovered map[string]*skills.Skill, names []string, tool, query, sourceFilter string) []listEntry {
	if len(names) > 0 {
		discovered = skills.FilterByAllowlist(discovered, names)
	}

	var entries []listEntry
	for _, skill := range discovered {
		if tool != "" && !skill.AllowsTool(tool) {
			continue
		}
		if query != "" && !skill.MatchesKeyword(query) {
			continue
		}
		if !sourceMatches(skill.Source, sourceFilter) {
			continue
		}
		entries = append(entries, listEntry{
			Type:        "skill",
			Name:        skill.Name,
			Description: skill.Description,
			Source:      skill.Source,
		})
	}
	return entries
}

func itemListEntries(items map[string]*plugins.Item) []listEntry {
	var entries []listEntry
	for _, item := range items {
		entries = append(entries, listEntry{
			Type:        string(item.Type),
			Name:        item.Name,
			Description: item.Description,
			Source:      item.Source,
		})
	}
	return entries
}

func sourceMatches(source, filter string) bool {
	switch filter {
	case skills.SourceStandalone:
		return source == skills.SourceStandalone
	case "plugin":
		return source != skills.SourceStandalone
	default:
		return true
	}
}

func filterEntries(entries []listEntry, sourceFilter, query string) []listEntry {
	if sourceFilter == "" && query == "" {
		return entries
	}

	var filtered []listEntry
	for _, entry := range entries {
		if !sourceMatches(entry.Source, sourceFilter) {
			continue
		}
		if query != "" {
			haystack := strings.ToLower(entry.Name + " " + entry.Description)
			if !strings.Contains(haystack, strings.ToLower(query)) {
				continue
			}
		}
		filtered = append(filtered, entry)
	}
	return filtered
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func init() {
	listCmd.Flags().String("type", "", "Filter by type (skill, command, agent)")
	listCmd.Flags().String("source", "", "Filter by source (standalone, plugin)")
	listCmd.Flags().String("query", "", "Filter by keyword")
	listCmd.Flags().String("tool", "", "Only skills whose allowed-tools permit this tool")
	listCmd.Flags().StringSlice("name", nil, "Only the named skills (repeatable)")
	listCmd.Flags().Bool("json", false, "Output JSON")

	rootCmd.AddCommand(listCmd)
}
