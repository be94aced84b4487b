// Package stats computes corpus statistics across discovered skills,
// commands, agents, and installed plugins.
package stats

import (
	"context"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

// WordCountStats summarizes skill body lengths
type WordCountStats struct {
	Min  int     `json:"min"`
	Max  int     `json:"max"`
	Mean float64 `json:"mean"`
}

// Stats is the full corpus report
type Stats struct {
	Skills           int            `json:"skills"`
	Commands         int            `json:"commands"`
	Agents           int            `json:"agents"`
	BySource         map[string]int `json:"bySource"`
	WordCounts       WordCountStats `json:"wordCounts"`
	ScriptsByKind    map[string]int `json:"scriptsByKind"`
	PluginsInstalled int            `json:"pluginsInstalled"`
	MissingTriggers  []string       `json:"missingTriggers"`
}

// Collect gathers statistics from live discovery
func Collect(ctx context.Context, skillDiscovery *skills.Discovery, pluginDiscovery *plugins.Discovery) (*Stats, error) {
	stats := &Stats{
		BySource:      make(map[string]int),
		ScriptsByKind: make(map[string]int),
	}

	discovered, err := skillDiscovery.DiscoverSkills(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover skills")
	}

	var totalWords int
	for _, skill := range discovered {
		stats.Skills++
		stats.BySource[sourceBucket(skill.Source)]++

		words := skill.WordCount()
		totalWords += words
		if stats.WordCounts.Min == 0 || words < stats.WordCounts.Min {
			stats.WordCounts.Min = words
		}
		if words > stats.WordCounts.Max {
			stats.WordCounts.Max = words
		}

		if len(skill.Triggers) == 0 {
			stats.MissingTriggers = append(stats.MissingTriggers, skill.Name)
		}

		if res, err := skill.Resources(); err == nil {
			for _, script := range res.Scripts {
				stats.ScriptsByKind[scriptKind(script)]++
			}
		}
	}
	if stats.Skills > 0 {
		stats.WordCounts.Mean = float64(totalWords) / float64(stats.Skills)
	}
	sort.Strings(stats.MissingTriggers)

	commandItems, err := pluginDiscovery.DiscoverCommands(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover commands")
	}
	stats.Commands = len(commandItems)
	for _, item := range commandItems {
		stats.BySource[sourceBucket(item.Source)]++
	}

	agentItems, err := pluginDiscovery.DiscoverAgents(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to discover agents")
	}
	stats.Agents = len(agentItems)
	for _, item := range agentItems {
		stats.BySource[sourceBucket(item.Source)]++
	}

	for _, global := range []bool{false, true} {
		installed, err := pluginDiscovery.ListInstalledPlugins(global)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list installed plugins")
		}
		stats.PluginsInstalled += len(installed)
	}

	return stats, nil
}

func sourceBucket(source string) string {
	if source == skills.SourceStandalone {
		return skills.SourceStandalone
	}
	return "plugin"
}

// scriptKind buckets a script path by its interpreter, inferred from the
// file extension
func scriptKind(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".sh", ".bash":
		return "shell"
	case ".py":
		return "python"
	case ".js", ".mjs":
		return "javascript"
	case ".rb":
		return "ruby"
	case "":
		return "other"
	default:
		return strings.TrimPrefix(ext, ".")
	}
}
