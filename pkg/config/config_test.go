package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	t.Run("MSKILLS_HOME wins", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(EnvHome, dir)
		t.Setenv("XDG_CONFIG_HOME", "/ignored")

		paths, err := ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, dir, paths.Home)
		assert.Equal(t, filepath.Join(dir, "config.json"), paths.RegistryFile)
		assert.Equal(t, filepath.Join(dir, "settings.yaml"), paths.SettingsFile)
		assert.Equal(t, filepath.Join(dir, "skills"), paths.DefaultStoreDir())
	})

	t.Run("XDG_CONFIG_HOME", func(t *testing.T) {
		xdg := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", xdg)

		paths, err := ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(xdg, "mskills"), paths.Home)
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)

		paths, err := ResolvePaths()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".config", "mskills"), paths.Home)
	})
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandHome("~/.claude/skills")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".claude", "skills"), got)

	got, err = ExpandHome("~")
	require.NoError(t, err)
	assert.Equal(t, home, got)

	got, err = ExpandHome("/abs/path")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestLoadDefaults(t *testing.T) {
	paths := PathsAt(t.TempDir())

	s, err := Load(viper.New(), paths)
	require.NoError(t, err)

	assert.Equal(t, paths.DefaultStoreDir(), s.StoreDir)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, "text", s.LogFormat)
	assert.Equal(t, "symlink", s.Apply.Mode)
	assert.Equal(t, "git", s.Git.Binary)
	assert.Equal(t, "main", s.Git.DefaultBranch)
	assert.Empty(t, s.CopyExclude)
	assert.Empty(t, s.CustomAgents)
}

func TestLoadSettingsFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	paths := PathsAt(t.TempDir())

	content := `store_dir: ~/skill-store
log_level: debug
apply:
  mode: copy
copy_exclude:
  - "**/.DS_Store"
  - node_modules
git:
  default_branch: trunk
custom_agents:
  cursor: ~/.cursor/skills
`
	require.NoError(t, os.WriteFile(paths.SettingsFile, []byte(content), 0o644))

	s, err := Load(viper.New(), paths)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "skill-store"), s.StoreDir)
	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, "copy", s.Apply.Mode)
	assert.Equal(t, []string{"**/.DS_Store", "node_modules"}, s.CopyExclude)
	assert.Equal(t, "git", s.Git.Binary)
	assert.Equal(t, "trunk", s.Git.DefaultBranch)
	assert.Equal(t, map[string]string{"cursor": filepath.Join(home, ".cursor", "skills")}, s.CustomAgents)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	paths := PathsAt(t.TempDir())
	t.Setenv("MSKILLS_LOG_LEVEL", "error")
	t.Setenv("MSKILLS_APPLY_MODE", "copy")
	t.Setenv("MSKILLS_GIT_BINARY", "/opt/git/bin/git")

	s, err := Load(viper.New(), paths)
	require.NoError(t, err)
	assert.Equal(t, "error", s.LogLevel)
	assert.Equal(t, "copy", s.Apply.Mode)
	assert.Equal(t, "/opt/git/bin/git", s.Git.Binary)
}

func TestLoadRejectsBadSettings(t *testing.T) {
	t.Run("malformed yaml", func(t *testing.T) {
		paths := PathsAt(t.TempDir())
		require.NoError(t, os.WriteFile(paths.SettingsFile, []byte("apply: [unclosed"), 0o644))

		_, err := Load(viper.New(), paths)
		require.Error(t, err)
		assert.Contains(t, err.Error(), paths.SettingsFile)
	})

	t.Run("bad exclude pattern", func(t *testing.T) {
		paths := PathsAt(t.TempDir())
		require.NoError(t, os.WriteFile(paths.SettingsFile, []byte("copy_exclude: [\"[\"]\n"), 0o644))

		_, err := Load(viper.New(), paths)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "copy_exclude")
	})
}

func TestMigrateLegacyRegistryFile(t *testing.T) {
	userHome := t.TempDir()
	paths := PathsAt(filepath.Join(userHome, ".config", "mskills"))
	legacy := filepath.Join(userHome, ".mskills.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{"skills":{},"agents":["claude"]}`), 0o644))

	MigrateLegacy(context.Background(), userHome, paths)

	assert.NoFileExists(t, legacy)
	data, err := os.ReadFile(paths.RegistryFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "claude")
}

func TestMigrateLegacyRegistryKeepsExisting(t *testing.T) {
	userHome := t.TempDir()
	paths := PathsAt(filepath.Join(userHome, ".config", "mskills"))
	require.NoError(t, os.MkdirAll(paths.Home, 0o755))
	require.NoError(t, os.WriteFile(paths.RegistryFile, []byte(`{"agents":["codex"]}`), 0o644))
	legacy := filepath.Join(userHome, ".mskills.json")
	require.NoError(t, os.WriteFile(legacy, []byte(`{"agents":["claude"]}`), 0o644))

	MigrateLegacy(context.Background(), userHome, paths)

	assert.FileExists(t, legacy)
	data, err := os.ReadFile(paths.RegistryFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "codex")
}

func TestMigrateLegacyHomeDirectory(t *testing.T) {
	userHome := t.TempDir()
	paths := PathsAt(filepath.Join(userHome, ".config", "mskills"))
	legacyDir := filepath.Join(userHome, ".mskills")
	require.NoError(t, os.MkdirAll(filepath.Join(legacyDir, "skills", "demo"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(legacyDir, "config.json"), []byte(`{}`), 0o644))

	MigrateLegacy(context.Background(), userHome, paths)

	assert.NoDirExists(t, legacyDir)
	assert.DirExists(t, filepath.Join(paths.Home, "skills", "demo"))
	assert.FileExists(t, paths.RegistryFile)
}

func TestMigrateLegacyHomeSkipsWhenTargetExists(t *testing.T) {
	userHome := t.TempDir()
	paths := PathsAt(filepath.Join(userHome, ".config", "mskills"))
	require.NoError(t, os.MkdirAll(paths.Home, 0o755))
	legacyDir := filepath.Join(userHome, ".mskills")
	require.NoError(t, os.MkdirAll(legacyDir, 0o755))

	MigrateLegacy(context.Background(), userHome, paths)

	assert.DirExists(t, legacyDir)
}

func TestMigrateLegacyNoop(t *testing.T) {
	userHome := t.TempDir()
	paths := PathsAt(filepath.Join(userHome, ".config", "mskills"))

	MigrateLegacy(context.Background(), userHome, paths)

	assert.NoDirExists(t, paths.Home)
}
