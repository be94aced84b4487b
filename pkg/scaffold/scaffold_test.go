package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-cli/skillet/pkg/skills"
)

func TestValidateName(t *testing.T) {
	assert.NoError(t, ValidateName("git-commit"))
	assert.NoError(t, ValidateName("k8s"))
	assert.Error(t, ValidateName(""))
	assert.Error(t, ValidateName("Git-Commit"))
	assert.Error(t, ValidateName("under_score"))
	assert.Error(t, ValidateName("-leading"))

	long := make([]byte, 70)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateName(string(long)))
}

func TestCreateProducesLoadableSkill(t *testing.T) {
	parent := t.TempDir()

	dir, err := Create(parent, "pr-review", Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(parent, "pr-review"), dir)

	// The scaffolded file must satisfy the discovery contract
	skill, err := skills.LoadSkill(filepath.Join(dir, skillFileName))
	require.NoError(t, err)
	assert.Equal(t, "pr-review", skill.Name)
	assert.Equal(t, []string{"pr review"}, skill.Triggers)
	assert.Contains(t, skill.Content, "# Pr Review")
}

func TestCreateWithSkeletons(t *testing.T) {
	parent := t.TempDir()

	dir, err := Create(parent, "deploy", Options{Scripts: true, References: true, Assets: true})
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, "scripts", "example.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o111)

	for _, subdir := range []string{"references", "assets"} {
		info, err := os.Stat(filepath.Join(dir, subdir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	data, err := os.ReadFile(filepath.Join(dir, skillFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "{baseDir}/scripts/example.sh")
}

func TestCreateRefusesExisting(t *testing.T) {
	parent := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(parent, "taken"), 0o755))

	_, err := Create(parent, "taken", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateRejectsBadName(t *testing.T) {
	_, err := Create(t.TempDir(), "Bad Name", Options{})
	require.Error(t, err)
}
