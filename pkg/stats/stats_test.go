package stats

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

func writeSkill(t *testing.T, dir, name, frontmatterExtra, body string) string {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))

	content := "---\nname: " + name + "\ndescription: d\n" + frontmatterExtra + "---\n\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
	return skillDir
}

func TestCollect(t *testing.T) {
	tmpDir := t.TempDir()
	skillsDir := filepath.Join(tmpDir, "skills")

	withTriggers := writeSkill(t, skillsDir, "git-commit", "triggers: [commit]\n", "one two three four\n")
	require.NoError(t, os.MkdirAll(filepath.Join(withTriggers, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(withTriggers, "scripts", "check.sh"), []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(withTriggers, "scripts", "analyze.py"), []byte("print()\n"), 0o755))

	writeSkill(t, skillsDir, "debugging", "", "one two\n")

	commandPath := filepath.Join(tmpDir, "plugins", "acme@toolkit", "commands", "deploy.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(commandPath), 0o755))
	require.NoError(t, os.WriteFile(commandPath, []byte("body\n"), 0o644))

	skillDiscovery, err := skills.NewDiscovery(skills.WithBaseDir(tmpDir), skills.WithHomeDir(tmpDir))
	require.NoError(t, err)
	pluginDiscovery, err := plugins.NewDiscovery(plugins.WithBaseDir(tmpDir), plugins.WithHomeDir(tmpDir))
	require.NoError(t, err)

	stats, err := Collect(context.Background(), skillDiscovery, pluginDiscovery)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Skills)
	assert.Equal(t, 1, stats.Commands)
	assert.Equal(t, 0, stats.Agents)

	assert.Equal(t, 2, stats.BySource["standalone"])
	assert.Equal(t, 1, stats.BySource["plugin"])

	assert.Equal(t, 2, stats.WordCounts.Min)
	assert.Equal(t, 4, stats.WordCounts.Max)
	assert.InDelta(t, 3.0, stats.WordCounts.Mean, 0.001)

	assert.Equal(t, 1, stats.ScriptsByKind["shell"])
	assert.Equal(t, 1, stats.ScriptsByKind["python"])

	assert.Equal(t, []string{"debugging"}, stats.MissingTriggers)

	assert.Equal(t, 1, stats.PluginsInstalled)
}

func TestCollectEmpty(t *testing.T) {
	tmpDir := t.TempDir()

	skillDiscovery, err := skills.NewDiscovery(skills.WithBaseDir(tmpDir), skills.WithHomeDir(tmpDir))
	require.NoError(t, err)
	pluginDiscovery, err := plugins.NewDiscovery(plugins.WithBaseDir(tmpDir), plugins.WithHomeDir(tmpDir))
	require.NoError(t, err)

	stats, err := Collect(context.Background(), skillDiscovery, pluginDiscovery)
	require.NoError(t, err)

	assert.Zero(t, stats.Skills)
	assert.Zero(t, stats.WordCounts.Mean)
	assert.Empty(t, stats.MissingTriggers)
}

func TestScriptKind(t *testing.T) {
	assert.Equal(t, "shell", scriptKind("scripts/run.sh"))
	assert.Equal(t, "python", scriptKind("scripts/run.py"))
	assert.Equal(t, "other", scriptKind("scripts/run"))
	assert.Equal(t, "pl", scriptKind("scripts/run.pl"))
}
