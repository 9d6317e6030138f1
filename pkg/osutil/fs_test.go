package osutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func TestCopyDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "demo")
	writeTree(t, src, map[string]string{
		"SKILL.md":              "---\nname: demo\n---\n",
		"scripts/run.sh":        "#!/bin/sh\necho hi\n",
		"reference/deep/doc.md": "nested",
	})
	require.NoError(t, os.Chmod(filepath.Join(src, "scripts", "run.sh"), 0o755))

	dst := filepath.Join(t.TempDir(), "store", "demo")
	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "reference", "deep", "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "nested", string(data))

	info, err := os.Stat(filepath.Join(dst, "scripts", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
}

func TestCopyDirOverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"SKILL.md": "new"})

	dst := t.TempDir()
	writeTree(t, dst, map[string]string{"SKILL.md": "old", "stale.txt": "keep"})

	require.NoError(t, CopyDir(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.FileExists(t, filepath.Join(dst, "stale.txt"))
}

func TestCopyDirExclude(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{
		"SKILL.md":        "x",
		".git/HEAD":       "ref: refs/heads/main",
		"notes/draft.tmp": "tmp",
		"notes/keep.md":   "keep",
	})

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyDir(src, dst, WithExclude(".git", "**/*.tmp")))

	assert.FileExists(t, filepath.Join(dst, "SKILL.md"))
	assert.FileExists(t, filepath.Join(dst, "notes", "keep.md"))
	assert.NoDirExists(t, filepath.Join(dst, ".git"))
	assert.NoFileExists(t, filepath.Join(dst, "notes", "draft.tmp"))
}

func TestCopyDirPreservesSymlinks(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"target.md": "t"})
	require.NoError(t, os.Symlink("target.md", filepath.Join(src, "link.md")))

	dst := filepath.Join(t.TempDir(), "out")
	require.NoError(t, CopyDir(src, dst))

	link, err := os.Readlink(filepath.Join(dst, "link.md"))
	require.NoError(t, err)
	assert.Equal(t, "target.md", link)
}

func TestCopyDirFollowsSymlinkedRoot(t *testing.T) {
	base := t.TempDir()
	realDir := filepath.Join(base, "real", "demo")
	writeTree(t, realDir, map[string]string{"SKILL.md": "x", "docs/a.md": "a"})
	require.NoError(t, os.MkdirAll(filepath.Join(base, "links"), 0o755))
	link := filepath.Join(base, "links", "demo")
	require.NoError(t, os.Symlink(filepath.Join("..", "real", "demo"), link))

	dst := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, CopyDir(link, dst))

	info, err := os.Lstat(dst)
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "copy root must be a real directory")
	assert.FileExists(t, filepath.Join(dst, "SKILL.md"))
	assert.FileExists(t, filepath.Join(dst, "docs", "a.md"))
}

func TestCopyDirErrors(t *testing.T) {
	err := CopyDir(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	err = CopyDir(file, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestValidatePatterns(t *testing.T) {
	assert.NoError(t, ValidatePatterns([]string{".git", "**/*.tmp"}))
	assert.Error(t, ValidatePatterns([]string{"[unclosed"}))
}

func TestExists(t *testing.T) {
	dir := t.TempDir()

	ok, err := Exists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Exists(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	assert.False(t, ok)

	dangling := filepath.Join(dir, "dangling")
	require.NoError(t, os.Symlink(filepath.Join(dir, "nowhere"), dangling))
	ok, err = Exists(dangling)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	ok, err := DirExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = DirExists(file)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = DirExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePath(t *testing.T) {
	base, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(base, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(base, "real"), filepath.Join(base, "link")))

	got, err := ResolvePath(filepath.Join(base, "link"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "real"), got)

	got, err = ResolvePath(filepath.Join(base, "link", "missing", "leaf"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(base, "real", "missing", "leaf"), got)
}

func TestIsWithin(t *testing.T) {
	tests := []struct {
		parent, child string
		want          bool
	}{
		{"/store", "/store", true},
		{"/store", "/store/demo", true},
		{"/store", "/store/demo/sub", true},
		{"/store", "/store-other", false},
		{"/store", "/", false},
		{"/store/demo", "/store", false},
		{"/store", "/store/..hidden", true},
	}

	for _, tt := range tests {
		t.Run(tt.parent+" "+tt.child, func(t *testing.T) {
			assert.Equal(t, tt.want, IsWithin(tt.parent, tt.child))
		})
	}
}
