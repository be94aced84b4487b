package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRepoName(t *testing.T) {
	assert.NoError(t, ValidateRepoName("acme/toolkit"))
	assert.Error(t, ValidateRepoName(""))
	assert.Error(t, ValidateRepoName("toolkit"))
	assert.Error(t, ValidateRepoName("/toolkit"))
	assert.Error(t, ValidateRepoName("acme/"))
}

func TestRepoToPluginName(t *testing.T) {
	assert.Equal(t, "acme@toolkit", repoToPluginName("acme/toolkit"))
	assert.Equal(t, "toolkit", repoToPluginName("toolkit"))
	// Only the first slash is replaced
	assert.Equal(t, "acme@group/toolkit", repoToPluginName("acme/group/toolkit"))
}

func TestPluginNameToPrefix(t *testing.T) {
	assert.Equal(t, "acme/toolkit/", pluginNameToPrefix("acme@toolkit"))
}

func TestPluginNameToUserFacing(t *testing.T) {
	assert.Equal(t, "acme/toolkit", PluginNameToUserFacing("acme@toolkit"))
}

func TestCheckExisting(t *testing.T) {
	tmpDir := t.TempDir()
	existing := filepath.Join(tmpDir, "plugin")
	require.NoError(t, os.MkdirAll(existing, 0o755))

	i := &Installer{}
	err := i.checkExisting(existing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--force")

	forced := &Installer{force: true}
	require.NoError(t, forced.checkExisting(existing))
	_, err = os.Stat(existing)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyDirPreservesStructure(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "src")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("skill\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "scripts", "run.sh"), []byte("#!/bin/sh\n"), 0o755))

	dst := filepath.Join(tmpDir, "dst")
	i := &Installer{}
	require.NoError(t, i.copyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "skill\n", string(data))

	info, err := os.Stat(filepath.Join(dst, "scripts", "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)
}

func TestFindSkillsRequiresSkillFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "good"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "good", skillFileName), []byte("x\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "not-a-skill"), 0o755))

	i := &Installer{}
	skills, err := i.findSkills(tmpDir)
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, filepath.Join(tmpDir, "good"), skills[0])
}

func TestRemoverRemoveMissing(t *testing.T) {
	r := &Remover{baseDir: t.TempDir()}
	err := r.Remove("acme/toolkit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRemoverListAndRemove(t *testing.T) {
	baseDir := t.TempDir()
	pluginDir := filepath.Join(baseDir, pluginsSubdir, "acme@toolkit")
	require.NoError(t, os.MkdirAll(filepath.Join(pluginDir, skillsSubdir), 0o755))

	r := &Remover{baseDir: baseDir}

	names, err := r.ListPlugins()
	require.NoError(t, err)
	assert.Equal(t, []string{"acme/toolkit"}, names)

	require.NoError(t, r.Remove("acme/toolkit"))

	names, err = r.ListPlugins()
	require.NoError(t, err)
	assert.Empty(t, names)
}
