package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/skillerr"
	"github.com/pkg/errors"
)

// Client is the narrow set of VCS operations the installer needs. Every
// argument is passed as a discrete value; implementations must never build
// shell command strings from them.
type Client interface {
	Init(ctx context.Context, dir string) error
	AddRemote(ctx context.Context, dir, name, url string) error
	EnableSparseCheckout(ctx context.Context, dir string) error
	SetSparseCheckoutPaths(ctx context.Context, dir string, paths ...string) error
	FetchAndCheckout(ctx context.Context, dir, remote, branch string, depth int) error
	Pull(ctx context.Context, dir string) error
}

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// ExecClient implements Client by running the git command-line binary.
type ExecClient struct {
	binary string
}

// NewExecClient creates a process-backed client. An empty binary means "git".
func NewExecClient(binary string) *ExecClient {
	if strings.TrimSpace(binary) == "" {
		binary = DefaultBinary
	}
	return &ExecClient{binary: binary}
}

// Init creates an empty repository in dir
func (c *ExecClient) Init(ctx context.Context, dir string) error {
	return c.run(ctx, dir, nil, "init", "--quiet")
}

// AddRemote registers url as remote name
func (c *ExecClient) AddRemote(ctx context.Context, dir, name, url string) error {
	if err := checkArgs(name, url); err != nil {
		return err
	}
	return c.run(ctx, dir, nil, "remote", "add", name, url)
}

// EnableSparseCheckout turns on core.sparseCheckout
func (c *ExecClient) EnableSparseCheckout(ctx context.Context, dir string) error {
	return c.run(ctx, dir, nil, "config", "core.sparseCheckout", "true")
}

// SetSparseCheckoutPaths replaces the sparse-checkout filter. Paths are fed on
// stdin so none of them can be read as an option.
func (c *ExecClient) SetSparseCheckoutPaths(ctx context.Context, dir string, paths ...string) error {
	if len(paths) == 0 {
		return errors.New("at least one sparse-checkout path is required")
	}
	stdin := strings.NewReader(strings.Join(paths, "\n") + "\n")
	return c.run(ctx, dir, stdin, "sparse-checkout", "set", "--stdin")
}

// FetchAndCheckout fetches branch from remote at the given depth and checks
// out the fetched commit.
func (c *ExecClient) FetchAndCheckout(ctx context.Context, dir, remote, branch string, depth int) error {
	if err := checkArgs(remote, branch); err != nil {
		return err
	}
	args := []string{"fetch", "--quiet"}
	if depth > 0 {
		args = append(args, "--depth", strconv.Itoa(depth))
	}
	args = append(args, remote, branch)
	if err := c.run(ctx, dir, nil, args...); err != nil {
		return err
	}
	return c.run(ctx, dir, nil, "checkout", "--quiet", "FETCH_HEAD")
}

// Pull updates the checkout rooted at dir from its tracked upstream
func (c *ExecClient) Pull(ctx context.Context, dir string) error {
	return c.run(ctx, dir, nil, "pull")
}

func (c *ExecClient) run(ctx context.Context, dir string, stdin *strings.Reader, args ...string) error {
	log := logger.G(ctx).WithField("dir", dir).WithField("args", args)
	log.Debug("running git")

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if stdin != nil {
		cmd.Stdin = stdin
	}
	osutil.IsolateProcess(cmd)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg == "" {
			msg = err.Error()
		}
		log.WithError(err).Debug("git command failed")
		return skillerr.Wrap(err, skillerr.GitProcessFailed, "git %s failed: %s", args[0], msg)
	}
	return nil
}

// checkArgs rejects values git would parse as options.
func checkArgs(values ...string) error {
	for _, v := range values {
		if v == "" {
			return skillerr.New(skillerr.GitProcessFailed, "empty git argument")
		}
		if strings.HasPrefix(v, "-") {
			return skillerr.New(skillerr.GitProcessFailed, "refusing git argument %q: looks like an option", v)
		}
	}
	return nil
}
