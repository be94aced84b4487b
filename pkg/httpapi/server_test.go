package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillet-cli/skillet/pkg/index"
	"github.com/skillet-cli/skillet/pkg/plugins"
	"github.com/skillet-cli/skillet/pkg/skills"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	tmpDir := t.TempDir()

	skillDir := filepath.Join(tmpDir, "skills", "git-commit")
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	content := "---\nname: git-commit\ndescription: Writes conventional commits\ntriggers:\n  - commit\n---\n\nUse {baseDir}/scripts/check.sh\n"
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))

	skillDiscovery, err := skills.NewDiscovery(skills.WithBaseDir(tmpDir), skills.WithHomeDir(tmpDir))
	require.NoError(t, err)
	pluginDiscovery, err := plugins.NewDiscovery(plugins.WithBaseDir(tmpDir), plugins.WithHomeDir(tmpDir))
	require.NoError(t, err)

	store, err := index.Open(context.Background(), filepath.Join(tmpDir, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	entries, err := index.CollectEntries(context.Background(), skillDiscovery, pluginDiscovery)
	require.NoError(t, err)
	_, err = store.Rebuild(context.Background(), entries)
	require.NoError(t, err)

	return NewServer("127.0.0.1:0", store, skillDiscovery, pluginDiscovery)
}

func doGet(t *testing.T, server *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestListSkills(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/skills")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Skills []index.Entry `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Skills, 1)
	assert.Equal(t, "git-commit", payload.Skills[0].Name)
}

func TestSearchSkills(t *testing.T) {
	server := newTestServer(t)

	rec := doGet(t, server, "/api/skills?q=conventional")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "git-commit")

	rec = doGet(t, server, "/api/skills?q=kubernetes")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Skills []index.Entry `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Empty(t, payload.Skills)
}

func TestSkillDetail(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/skills/git-commit")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Name    string `json:"name"`
		Content string `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "git-commit", detail.Name)
	// {baseDir} resolves to the absolute bundle path
	assert.NotContains(t, detail.Content, "{baseDir}")
	assert.Contains(t, detail.Content, "scripts/check.sh")
}

func TestSkillDetailNotFound(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/skills/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecommend(t *testing.T) {
	server := newTestServer(t)

	rec := doGet(t, server, "/api/recommend?task=write+a+commit+message")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "git-commit")

	rec = doGet(t, server, "/api/recommend")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	rec := doGet(t, newTestServer(t), "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Skills int `json:"skills"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Skills)
}
