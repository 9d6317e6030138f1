// Package osutil provides the filesystem and process helpers shared by the
// skill store, the git installer and the apply engine.
package osutil

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
)

// CopyOption configures CopyDir
type CopyOption func(*copyOptions)

type copyOptions struct {
	exclude []string
}

// WithExclude skips entries whose slash-separated path relative to the copy
// root matches any of the doublestar patterns. A matching directory is
// skipped entirely.
func WithExclude(patterns ...string) CopyOption {
	return func(o *copyOptions) {
		o.exclude = append(o.exclude, patterns...)
	}
}

// ValidatePatterns reports the first malformed exclude pattern.
func ValidatePatterns(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

func (o *copyOptions) excluded(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range o.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// CopyDir recursively copies src into dst, creating dst if needed. Files
// already present in dst are overwritten; other files in dst are left alone.
// Symlinks inside the tree are recreated as symlinks, not followed. A
// symlinked src is resolved first so its target's contents are copied.
func CopyDir(src, dst string, opts ...CopyOption) error {
	o := &copyOptions{}
	for _, opt := range opts {
		opt(o)
	}

	resolved, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrapf(err, "failed to resolve %s", src)
	}
	src = resolved

	info, err := os.Stat(src)
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", src)
	}
	if !info.IsDir() {
		return errors.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		if relPath != "." && o.excluded(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		destPath := filepath.Join(dst, relPath)

		switch {
		case info.IsDir():
			return os.MkdirAll(destPath, info.Mode().Perm()|0o700)
		case info.Mode()&os.ModeSymlink != 0:
			return copySymlink(path, destPath)
		default:
			return copyFile(path, destPath, info.Mode().Perm())
		}
	})
}

func copySymlink(src, dst string) error {
	target, err := os.Readlink(src)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	return os.Symlink(target, dst)
}

func copyFile(src, dst string, perm os.FileMode) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// Exists reports whether path exists, without following a final symlink.
// Errors other than "not exist" are returned to the caller.
func Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// DirExists reports whether path is an existing directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir(), nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ResolvePath returns path made absolute with symlinks evaluated. When path
// does not exist yet, its longest existing parent is resolved and the
// remaining elements are joined back on.
func ResolvePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", path)
	}

	var rest []string
	dir := abs
	for {
		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...), nil
		}
		if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "failed to resolve %s", path)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// IsWithin reports whether child is parent or lies below it. Both paths are
// compared lexically and should already be resolved.
func IsWithin(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
