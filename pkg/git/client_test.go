package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/jingkaihe/mskills/pkg/skillerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultBinary); err != nil {
		t.Skip("git binary not available")
	}
}

func TestNewExecClient(t *testing.T) {
	assert.Equal(t, DefaultBinary, NewExecClient("").binary)
	assert.Equal(t, "/usr/local/bin/git", NewExecClient("/usr/local/bin/git").binary)
}

func TestExecClientPreparesSparseRepository(t *testing.T) {
	requireGit(t)

	ctx := context.Background()
	dir := t.TempDir()
	client := NewExecClient("")

	require.NoError(t, client.Init(ctx, dir))
	require.NoError(t, client.AddRemote(ctx, dir, "origin", "https://github.com/user/repo.git"))
	require.NoError(t, client.EnableSparseCheckout(ctx, dir))
	require.NoError(t, client.SetSparseCheckoutPaths(ctx, dir, "skills/demo"))

	out, err := exec.Command("git", "-C", dir, "config", "--get", "remote.origin.url").Output()
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/user/repo.git\n", string(out))

	sparse, err := os.ReadFile(filepath.Join(dir, ".git", "info", "sparse-checkout"))
	require.NoError(t, err)
	assert.Contains(t, string(sparse), "skills/demo")
}

func TestExecClientReportsProcessFailure(t *testing.T) {
	requireGit(t)

	err := NewExecClient("").Pull(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, skillerr.GitProcessFailed, skillerr.KindOf(err))
	assert.Contains(t, err.Error(), "git pull failed")
}

func TestExecClientMissingBinary(t *testing.T) {
	err := NewExecClient(filepath.Join(t.TempDir(), "no-such-git")).Init(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, skillerr.GitProcessFailed, skillerr.KindOf(err))
}

func TestExecClientRejectsOptionLikeArguments(t *testing.T) {
	client := NewExecClient(filepath.Join(t.TempDir(), "never-run"))
	ctx := context.Background()

	err := client.AddRemote(ctx, t.TempDir(), "origin", "--upload-pack=touch /tmp/pwned")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looks like an option")

	err = client.FetchAndCheckout(ctx, t.TempDir(), "origin", "--upload-pack=x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looks like an option")

	err = client.SetSparseCheckoutPaths(ctx, t.TempDir())
	require.Error(t, err)
}
