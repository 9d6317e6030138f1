package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/skillerr"
)

const (
	// DefaultBranch is fetched when the source URL names no branch.
	DefaultBranch = "main"
	remoteName    = "origin"
	fetchDepth    = 1
	tempPattern   = "mskills-git-*"
)

// Installer materializes a repository subdirectory into the skill store
type Installer struct {
	client        Client
	tempDir       string
	defaultBranch string
	copyOpts      []osutil.CopyOption
}

// InstallerOption configures an Installer instance
type InstallerOption func(*Installer)

// WithClient sets the VCS client. Defaults to an ExecClient running "git".
func WithClient(client Client) InstallerOption {
	return func(i *Installer) {
		i.client = client
	}
}

// WithTempDir sets the parent directory for temporary checkouts
func WithTempDir(dir string) InstallerOption {
	return func(i *Installer) {
		i.tempDir = dir
	}
}

// WithDefaultBranch overrides the branch used when a source names none
func WithDefaultBranch(branch string) InstallerOption {
	return func(i *Installer) {
		if strings.TrimSpace(branch) != "" {
			i.defaultBranch = strings.TrimSpace(branch)
		}
	}
}

// WithCopyOptions sets the options used when copying out of the checkout
func WithCopyOptions(opts ...osutil.CopyOption) InstallerOption {
	return func(i *Installer) {
		i.copyOpts = append(i.copyOpts, opts...)
	}
}

// NewInstaller creates a new git installer
func NewInstaller(opts ...InstallerOption) *Installer {
	i := &Installer{
		defaultBranch: DefaultBranch,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.client == nil {
		i.client = NewExecClient(DefaultBinary)
	}
	return i
}

// Install resolves source, sparse-checks-out only its subpath into a
// temporary repository, and copies that subpath's contents into dest.
// Installing a whole repository is rejected before anything is fetched. The
// temporary repository is removed on every return path.
func (i *Installer) Install(ctx context.Context, source, dest string) error {
	ref := ParseGitHubURL(source)
	if !ref.HasSubpath() {
		return skillerr.New(skillerr.UnsupportedRootInstall,
			"installing from repository root is not supported, please specify a subdirectory containing the skill (e.g. /tree/main/skill)")
	}

	tempDir, err := os.MkdirTemp(i.tempDir, tempPattern)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to create temp directory")
	}
	log := logger.G(ctx).WithField("source", ref.URL).WithField("path", ref.Path)
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			log.WithError(rmErr).WithField("temp_dir", tempDir).Warn("failed to remove temporary checkout")
		}
	}()

	branch := ref.Branch
	if branch == "" {
		branch = i.defaultBranch
	}

	log.WithField("branch", branch).Debug("starting sparse checkout")

	if err := i.client.Init(ctx, tempDir); err != nil {
		return err
	}
	if err := i.client.AddRemote(ctx, tempDir, remoteName, ref.URL); err != nil {
		return err
	}
	if err := i.client.EnableSparseCheckout(ctx, tempDir); err != nil {
		return err
	}
	if err := i.client.SetSparseCheckoutPaths(ctx, tempDir, ref.Path); err != nil {
		return err
	}
	if err := i.client.FetchAndCheckout(ctx, tempDir, remoteName, branch, fetchDepth); err != nil {
		return err
	}

	subpath, ok := resolveInside(tempDir, ref.Path)
	if !ok {
		return skillerr.New(skillerr.SubpathNotFound, "path '%s' not found in repository", ref.Path)
	}
	isDir, err := osutil.DirExists(subpath)
	if err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to inspect %s", subpath)
	}
	if !isDir {
		return skillerr.New(skillerr.SubpathNotFound, "path '%s' not found in repository", ref.Path)
	}

	if err := osutil.CopyDir(subpath, dest, i.copyOpts...); err != nil {
		return skillerr.Wrap(err, skillerr.FilesystemError, "failed to copy '%s' to %s", ref.Path, dest)
	}

	log.WithField("dest", dest).Debug("installed skill from git")
	return nil
}

// Update pulls the existing checkout rooted at path. Process failures are
// returned as-is, with no retry.
func (i *Installer) Update(ctx context.Context, path string) error {
	logger.G(ctx).WithField("path", path).Debug("pulling skill checkout")
	return i.client.Pull(ctx, path)
}

// resolveInside joins rel onto root and reports false if the result escapes root.
func resolveInside(root, rel string) (string, bool) {
	joined := filepath.Join(root, filepath.FromSlash(rel))
	r, err := filepath.Rel(root, joined)
	if err != nil || r == "." || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}
