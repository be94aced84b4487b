package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func rebuildWith(t *testing.T, store *Store, entries []Entry) *Run {
	t.Helper()
	run, err := store.Rebuild(context.Background(), entries)
	require.NoError(t, err)
	return run
}

func TestRebuildAndList(t *testing.T) {
	store := newTestStore(t)

	run := rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "git-commit", Description: "Writes commits", ModTime: time.Now()},
		{Type: EntryTypeCommand, Name: "deploy", ModTime: time.Now()},
	})
	assert.Equal(t, 2, run.EntryCount)
	assert.NotEmpty(t, run.ID)

	all, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlySkills, err := store.List(context.Background(), EntryTypeSkill)
	require.NoError(t, err)
	require.Len(t, onlySkills, 1)
	assert.Equal(t, "git-commit", onlySkills[0].Name)
	assert.NotEmpty(t, onlySkills[0].ID)
	assert.False(t, onlySkills[0].IndexedAt.IsZero())
}

func TestRebuildReplacesPrevious(t *testing.T) {
	store := newTestStore(t)

	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "old", ModTime: time.Now()},
	})
	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "new", ModTime: time.Now()},
	})

	entries, err := store.List(context.Background(), EntryTypeSkill)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Name)
}

func TestGet(t *testing.T) {
	store := newTestStore(t)
	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "git-commit", Description: "d", ModTime: time.Now()},
	})

	entry, err := store.Get(context.Background(), EntryTypeSkill, "git-commit")
	require.NoError(t, err)
	assert.Equal(t, "d", entry.Description)

	_, err = store.Get(context.Background(), EntryTypeSkill, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSearch(t *testing.T) {
	store := newTestStore(t)
	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "git-commit", Description: "Writes conventional commits", ModTime: time.Now()},
		{Type: EntryTypeSkill, Name: "debugging", Description: "Systematic debugging", Triggers: "root cause\nbisect", ModTime: time.Now()},
		{Type: EntryTypeCommand, Name: "deploy", Description: "Ship it", ModTime: time.Now()},
	})

	byName, err := store.Search(context.Background(), "GIT")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "git-commit", byName[0].Name)

	byTrigger, err := store.Search(context.Background(), "bisect")
	require.NoError(t, err)
	require.Len(t, byTrigger, 1)
	assert.Equal(t, "debugging", byTrigger[0].Name)

	none, err := store.Search(context.Background(), "kubernetes")
	require.NoError(t, err)
	assert.Empty(t, none)

	// LIKE metacharacters are literals in queries
	literal, err := store.Search(context.Background(), "100%")
	require.NoError(t, err)
	assert.Empty(t, literal)
}

func TestRecommend(t *testing.T) {
	store := newTestStore(t)
	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "git-commit", Description: "Writes conventional commit messages", Triggers: "commit", ModTime: time.Now()},
		{Type: EntryTypeSkill, Name: "pr-review", Description: "Reviews pull requests", Triggers: "review", ModTime: time.Now()},
		{Type: EntryTypeSkill, Name: "debugging", Description: "Systematic debugging", ModTime: time.Now()},
		// Commands are never recommended
		{Type: EntryTypeCommand, Name: "commit", Description: "commit helper", ModTime: time.Now()},
	})

	recs, err := store.Recommend(context.Background(), "write a commit message and review the pull request")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// git-commit matches commit+message+write(s), pr-review matches review+pull+request
	for _, rec := range recs {
		assert.Equal(t, EntryTypeSkill, rec.Entry.Type)
		assert.Positive(t, rec.Score)
	}
	assert.GreaterOrEqual(t, recs[0].Score, recs[1].Score)
}

func TestRecommendEmptyTask(t *testing.T) {
	store := newTestStore(t)
	recs, err := store.Recommend(context.Background(), "a an")
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestRecommendCapsResults(t *testing.T) {
	store := newTestStore(t)

	var entries []Entry
	names := []string{"a-skill", "b-skill", "c-skill", "d-skill", "e-skill", "f-skill", "g-skill"}
	for _, name := range names {
		entries = append(entries, Entry{
			Type: EntryTypeSkill, Name: name, Description: "handles deployment", ModTime: time.Now(),
		})
	}
	rebuildWith(t, store, entries)

	recs, err := store.Recommend(context.Background(), "deployment")
	require.NoError(t, err)
	assert.Len(t, recs, maxRecommendations)
	// Ties break alphabetically
	assert.Equal(t, "a-skill", recs[0].Entry.Name)
}

func TestStatus(t *testing.T) {
	store := newTestStore(t)

	status, err := store.Status(context.Background())
	require.NoError(t, err)
	assert.Zero(t, status.TotalCount)
	assert.Nil(t, status.LastRun)

	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "one", ModTime: time.Now()},
		{Type: EntryTypeCommand, Name: "two", ModTime: time.Now()},
	})

	status, err = store.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalCount)
	assert.Equal(t, 1, status.EntryCounts[EntryTypeSkill])
	require.NotNil(t, status.LastRun)
	assert.Equal(t, 2, status.LastRun.EntryCount)
}

func TestStatusStaleness(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	manifest := filepath.Join(dir, "SKILL.md")
	require.NoError(t, os.WriteFile(manifest, []byte("---\nname: fresh\n---\n"), 0o644))
	info, err := os.Stat(manifest)
	require.NoError(t, err)

	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "fresh", Directory: dir, ModTime: info.ModTime()},
		{Type: EntryTypeSkill, Name: "gone", Directory: filepath.Join(dir, "deleted"), ModTime: time.Now()},
	})

	status, err := store.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.StaleCount)
}

func TestStatusStaleAfterManifestEdit(t *testing.T) {
	store := newTestStore(t)
	dir := t.TempDir()

	manifest := filepath.Join(dir, "SKILL.md")
	require.NoError(t, os.WriteFile(manifest, []byte("---\nname: edited\n---\n"), 0o644))
	info, err := os.Stat(manifest)
	require.NoError(t, err)

	rebuildWith(t, store, []Entry{
		{Type: EntryTypeSkill, Name: "edited", Directory: dir, ModTime: info.ModTime()},
	})

	// Editing SKILL.md in place changes only the file's mtime, not the
	// directory's
	later := info.ModTime().Add(10 * time.Second)
	require.NoError(t, os.Chtimes(manifest, later, later))

	status, err := store.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, status.StaleCount)
}

func TestTaskKeywords(t *testing.T) {
	keywords := taskKeywords("Fix the bug, fix it NOW!")
	assert.Equal(t, []string{"fix", "the", "bug", "now"}, keywords)
}

func TestSplitTriggers(t *testing.T) {
	assert.Nil(t, SplitTriggers(""))
	assert.Equal(t, []string{"a", "b"}, SplitTriggers("a\nb"))
}

func TestCollectEntries(t *testing.T) {
	tmpDir := t.TempDir()

	skillDir := filepath.Join(tmpDir, "skills", "git-commit")
	require.NoError(t, os.MkdirAll(filepath.Join(skillDir, "scripts"), 0o755))
	skillContent := "---\nname: git-commit\ndescription: Writes commits\ntriggers:\n  - commit\n---\n\nSome body text here.\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(skillContent), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "scripts", "check.sh"), []byte("#!/bin/sh\n"), 0o755))

	commandPath := filepath.Join(tmpDir, "commands", "deploy.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(commandPath), 0o755))
	require.NoError(t, os.WriteFile(commandPath, []byte("---\ndescription: Ship it\n---\nbody\n"), 0o644))

	skillDiscovery, err := skills.NewDiscovery(skills.WithBaseDir(tmpDir), skills.WithHomeDir(tmpDir))
	require.NoError(t, err)
	pluginDiscovery, err := plugins.NewDiscovery(plugins.WithBaseDir(tmpDir), plugins.WithHomeDir(tmpDir))
	require.NoError(t, err)

	entries, err := CollectEntries(context.Background(), skillDiscovery, pluginDiscovery)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byName := make(map[string]Entry)
	for _, entry := range entries {
		byName[entry.Name] = entry
	}

	skillEntry := byName["git-commit"]
	assert.Equal(t, EntryTypeSkill, skillEntry.Type)
	assert.Equal(t, "commit", skillEntry.Triggers)
	assert.Equal(t, 1, skillEntry.ScriptCount)
	assert.Equal(t, 4, skillEntry.WordCount)
	assert.False(t, skillEntry.ModTime.IsZero())

	commandEntry := byName["deploy"]
	assert.Equal(t, EntryTypeCommand, commandEntry.Type)
	assert.Equal(t, "Ship it", commandEntry.Description)
}
