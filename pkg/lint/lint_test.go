package lint

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, root, name, content string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, skillFileName), []byte(content), 0o644))
	return dir
}

func issueMessages(report *Report) []string {
	var messages []string
	for _, issue := range report.Issues {
		messages = append(messages, issue.Message)
	}
	return messages
}

func TestAuditCleanSkill(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "git-commit", `---
name: git-commit
description: Writes conventional commit messages for staged changes
triggers:
  - commit
---

# Git Commit

Run {baseDir}/scripts/check.sh before committing.
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "check.sh"), []byte("#!/bin/sh\n"), 0o755))

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	assert.Empty(t, report.Issues)
	assert.Equal(t, maxScore, report.Score)
}

func TestAuditMissingSkillFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityError, report.Issues[0].Severity)
	assert.Equal(t, maxScore-errorDeduction, report.Score)
}

func TestAuditMissingFrontmatter(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "bare", "# No frontmatter\n")

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Contains(t, issueMessages(report), "missing frontmatter")
}

func TestAuditUnparseableFrontmatter(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "broken", "---\nname: [unclosed\n---\nbody\n")

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityError, report.Issues[0].Severity)
	assert.Contains(t, report.Issues[0].Message, "unparseable frontmatter")
}

func TestAuditMetadataRules(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "MyDir", `---
name: My_Skill
description: TODO fill this in
---
body
`)

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	messages := issueMessages(report)
	assert.Contains(t, messages, "name 'My_Skill' does not match directory name 'MyDir'")
	assert.Contains(t, messages, "name 'My_Skill' is not kebab-case")
	assert.Contains(t, messages, "description contains a TODO placeholder")
	assert.Contains(t, messages, "no triggers declared")
}

func TestAuditShortDescriptionWarns(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "short", "---\nname: short\ndescription: tiny\ntriggers: [x]\n---\nbody\n")

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	require.Len(t, report.Issues, 1)
	assert.Equal(t, SeverityWarning, report.Issues[0].Severity)
	assert.Equal(t, maxScore-warningDeduction, report.Score)
}

func TestAuditBodyRules(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "sloppy", `---
name: sloppy
description: A perfectly reasonable description here
triggers: [x]
---

TODO: finish writing this.

See {baseDir}/references/missing.md for details.
`)

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	messages := issueMessages(report)
	assert.Contains(t, messages, "body contains TODO/FIXME placeholders")
	assert.Contains(t, messages, "referenced resource does not exist: references/missing.md")
}

func TestAuditResourceRules(t *testing.T) {
	dir := writeBundle(t, t.TempDir(), "resources", `---
name: resources
description: A perfectly reasonable description here
triggers: [x]
---
body
`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "run.sh"), []byte("#!/bin/sh\n"), 0o644))

	report, err := AuditSkillDir(context.Background(), dir)
	require.NoError(t, err)

	messages := issueMessages(report)
	assert.Contains(t, messages, "empty assets directory")
	assert.Contains(t, messages, "script is not executable: scripts/run.sh")
}

func TestAuditTree(t *testing.T) {
	root := t.TempDir()
	writeBundle(t, root, "good", "---\nname: good\ndescription: A perfectly reasonable description\ntriggers: [x]\n---\nbody\n")
	writeBundle(t, root, "bad", "no frontmatter\n")

	summary, err := AuditTree(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, summary.Reports, 2)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, ExitErrors, summary.ExitCode())

	// Reports come back in directory order
	assert.Equal(t, "bad", summary.Reports[0].Name)
}

func TestAuditTreeSingleBundle(t *testing.T) {
	root := t.TempDir()
	dir := writeBundle(t, root, "solo", "---\nname: solo\ndescription: A perfectly reasonable description\ntriggers: [x]\n---\nbody\n")

	summary, err := AuditTree(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, summary.Reports, 1)
	assert.Equal(t, ExitClean, summary.ExitCode())
}

func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitClean, (&Summary{}).ExitCode())
	assert.Equal(t, ExitWarnings, (&Summary{Warnings: 1}).ExitCode())
	assert.Equal(t, ExitErrors, (&Summary{Warnings: 2, Errors: 1}).ExitCode())
}

func TestScoreFloor(t *testing.T) {
	report := &Report{}
	for i := 0; i < 5; i++ {
		report.addIssue(SeverityError, "x")
	}
	report.finalize()
	assert.Equal(t, 0, report.Score)
}
