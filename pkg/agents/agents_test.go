package agents

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/mskills/pkg/registry"
	"github.com/jingkaihe/mskills/pkg/skillerr"
)

func TestCatalogBuiltins(t *testing.T) {
	c := NewCatalog("/home/u", nil)

	assert.Equal(t, []string{"claude", "codex", "gemini", "github-copilot-cli"}, c.Supported())

	target, ok := c.Lookup("github-copilot-cli")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("/home/u", ".copilot", "skills"), target.SkillsDirectory)

	target, ok = c.Lookup("claude")
	require.True(t, ok)
	assert.Equal(t, Target{ID: "claude", SkillsDirectory: filepath.Join("/home/u", ".claude", "skills")}, target)

	_, ok = c.Lookup("cursor")
	assert.False(t, ok)
}

func TestCatalogCustomAgents(t *testing.T) {
	c := NewCatalog("/home/u", map[string]string{
		"cursor": "/home/u/.cursor/skills",
		"claude": "/opt/claude/skills",
	})

	assert.Contains(t, c.Supported(), "cursor")

	target, ok := c.Lookup("claude")
	require.True(t, ok)
	assert.Equal(t, "/opt/claude/skills", target.SkillsDirectory)
}

func newTestManager(t *testing.T) (*Manager, *registry.FileStore) {
	t.Helper()
	store := registry.NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	return NewManager(store, NewCatalog(t.TempDir(), nil)), store
}

func TestEnable(t *testing.T) {
	m, store := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Enable(ctx, "claude"))
	require.NoError(t, m.Enable(ctx, " codex "))
	require.NoError(t, m.Enable(ctx, "claude"))

	enabled, err := m.Enabled()
	require.NoError(t, err)
	assert.Equal(t, []string{"claude", "codex"}, enabled)

	reg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"claude", "codex"}, reg.Agents)
}

func TestEnableUnsupported(t *testing.T) {
	m, store := newTestManager(t)

	err := m.Enable(context.Background(), "notepad")
	require.Error(t, err)
	assert.Equal(t, skillerr.UnsupportedAgent, skillerr.KindOf(err))
	assert.Equal(t, "Agent 'notepad' is not supported. Supported agents: claude, codex, gemini, github-copilot-cli", err.Error())
	assert.NoFileExists(t, store.Path())
}

func TestDisable(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Enable(ctx, "claude"))
	require.NoError(t, m.Enable(ctx, "gemini"))
	require.NoError(t, m.Disable(ctx, "claude"))
	require.NoError(t, m.Disable(ctx, "claude"))
	require.NoError(t, m.Disable(ctx, "never-known"))

	enabled, err := m.Enabled()
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini"}, enabled)
}

func TestDisableDoesNotCreateRegistry(t *testing.T) {
	m, store := newTestManager(t)
	require.NoError(t, m.Disable(context.Background(), "claude"))
	assert.NoFileExists(t, store.Path())
}
