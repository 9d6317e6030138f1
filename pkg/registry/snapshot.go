package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jingkaihe/mskills/pkg/osutil"
	"github.com/jingkaihe/mskills/pkg/skillerr"
)

// snapshot holds the previous content of a canonical directory while it is
// being refreshed. backup is empty when there was nothing to keep.
type snapshot struct {
	original string
	backup   string
}

func backupPath(original string) string {
	return filepath.Join(filepath.Dir(original),
		fmt.Sprintf(".%s.backup-%s", filepath.Base(original), uuid.NewString()))
}

// moveSnapshot renames the canonical directory out of the way, leaving the
// path free for a fresh install.
func moveSnapshot(original string) (*snapshot, error) {
	snap := &snapshot{original: original}
	exists, err := osutil.Exists(original)
	if err != nil {
		return nil, skillerr.Wrap(err, skillerr.FilesystemError, "failed to inspect %s", original)
	}
	if !exists {
		return snap, nil
	}

	snap.backup = backupPath(original)
	if err := os.Rename(original, snap.backup); err != nil {
		return nil, skillerr.Wrap(err, skillerr.FilesystemError, "failed to back up %s", original)
	}
	return snap, nil
}

// copySnapshot copies the canonical directory aside and leaves it in place,
// for refreshes that modify the directory itself.
func copySnapshot(original string) (*snapshot, error) {
	snap := &snapshot{original: original, backup: backupPath(original)}
	if err := osutil.CopyDir(original, snap.backup); err != nil {
		_ = os.RemoveAll(snap.backup)
		return nil, skillerr.Wrap(err, skillerr.FilesystemError, "failed to back up %s", original)
	}
	return snap, nil
}

func (s *snapshot) restore() error {
	if err := os.RemoveAll(s.original); err != nil {
		return err
	}
	if s.backup == "" {
		return nil
	}
	return os.Rename(s.backup, s.original)
}

func (s *snapshot) discard() error {
	if s.backup == "" {
		return nil
	}
	return os.RemoveAll(s.backup)
}
