package main

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-cli/skillet/pkg/logger"
	"github.com/skillet-cli/skillet/pkg/skills"
)

func TestParseRepoRef(t *testing.T) {
	repo, ref := parseRepoRef("acme/toolkit")
	assert.Equal(t, "acme/toolkit", repo)
	assert.Empty(t, ref)

	repo, ref = parseRepoRef("acme/toolkit@v1.2.0")
	assert.Equal(t, "acme/toolkit", repo)
	assert.Equal(t, "v1.2.0", ref)
}

func TestParseKeyValues(t *testing.T) {
	args, err := parseKeyValues([]string{"name=world", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"name": "world", "empty": ""}, args)

	_, err = parseKeyValues([]string{"noequals"})
	require.Error(t, err)

	_, err = parseKeyValues([]string{"=value"})
	require.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "0123456...", truncate("0123456789abc", 10))
}

func TestExitCodeError(t *testing.T) {
	assert.Equal(t, "exit status 2", exitCodeError{code: 2}.Error())

	wrapped := errors.Wrap(exitCodeError{code: 2}, "lint failed")
	var exitErr exitCodeError
	require.True(t, errors.As(wrapped, &exitErr))
	assert.Equal(t, 2, exitErr.code)
}

func TestSetupLoggingFromEnv(t *testing.T) {
	t.Setenv("SKILLET_LOG_LEVEL", "debug")
	require.NoError(t, setupLogging())
	assert.Equal(t, logrus.DebugLevel, logger.L.Logger.GetLevel())

	t.Cleanup(func() { logger.SetLogLevel("info") })
}

func TestSkillListEntries(t *testing.T) {
	discovered := map[string]*skills.Skill{
		"git-commit": {
			Name:         "git-commit",
			Description:  "Writes commits",
			Source:       skills.SourceStandalone,
			Triggers:     []string{"version control"},
			AllowedTools: []string{"Bash(git:*)"},
		},
		"pdf-tools": {
			Name:         "pdf-tools",
			Description:  "Extracts text",
			Source:       "acme/toolkit",
			AllowedTools: []string{"Read*"},
		},
	}

	byTool := skillListEntries(discovered, nil, "Bash(git:commit)", "", "")
	require.Len(t, byTool, 1)
	assert.Equal(t, "git-commit", byTool[0].Name)

	// Keyword matching covers triggers, not just name and description
	byTrigger := skillListEntries(discovered, nil, "", "version", "")
	require.Len(t, byTrigger, 1)
	assert.Equal(t, "git-commit", byTrigger[0].Name)

	byName := skillListEntries(discovered, []string{"pdf-tools"}, "", "", "")
	require.Len(t, byName, 1)
	assert.Equal(t, "pdf-tools", byName[0].Name)

	bySource := skillListEntries(discovered, nil, "", "", "plugin")
	require.Len(t, bySource, 1)
	assert.Equal(t, "pdf-tools", bySource[0].Name)

	assert.Len(t, skillListEntries(discovered, nil, "", "", ""), 2)
}

func TestFilterEntries(t *testing.T) {
	entries := []listEntry{
		{Type: "skill", Name: "git-commit", Description: "commits", Source: "standalone"},
		{Type: "skill", Name: "debugging", Description: "bugs", Source: "acme/toolkit"},
	}

	bySource := filterEntries(entries, "plugin", "")
	require.Len(t, bySource, 1)
	assert.Equal(t, "debugging", bySource[0].Name)

	byQuery := filterEntries(entries, "", "COMMIT")
	require.Len(t, byQuery, 1)
	assert.Equal(t, "git-commit", byQuery[0].Name)

	assert.Len(t, filterEntries(entries, "", ""), 2)
}
