package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/jingkaihe/mskills/pkg/logger"
	"github.com/jingkaihe/mskills/pkg/osutil"
)

const (
	legacyRegistryFile = ".mskills.json"
	legacyHomeDir      = ".mskills"
)

// MigrateLegacy moves state written by older releases into paths:
// ~/.mskills.json becomes the registry file, and a ~/.mskills directory
// becomes the mskills directory when that does not exist yet. Failures are
// logged and never returned, so a broken legacy layout cannot block a command.
func MigrateLegacy(ctx context.Context, userHome string, paths Paths) {
	log := logger.G(ctx)

	if err := migrateLegacyRegistry(userHome, paths); err != nil {
		log.WithError(err).Warn("failed to migrate legacy registry file")
	}
	if err := migrateLegacyHome(ctx, userHome, paths); err != nil {
		log.WithError(err).Warn("failed to migrate legacy mskills directory")
	}
}

func migrateLegacyRegistry(userHome string, paths Paths) error {
	legacy := filepath.Join(userHome, legacyRegistryFile)
	info, err := os.Stat(legacy)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "failed to stat %s", legacy)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	exists, err := osutil.Exists(paths.RegistryFile)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("%s already exists, leaving %s in place", paths.RegistryFile, legacy)
	}

	if err := os.MkdirAll(paths.Home, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", paths.Home)
	}
	return errors.Wrapf(os.Rename(legacy, paths.RegistryFile), "failed to move %s", legacy)
}

func migrateLegacyHome(ctx context.Context, userHome string, paths Paths) error {
	legacy := filepath.Join(userHome, legacyHomeDir)
	if filepath.Clean(legacy) == filepath.Clean(paths.Home) {
		return nil
	}

	isDir, err := osutil.DirExists(legacy)
	if err != nil || !isDir {
		return err
	}

	exists, err := osutil.Exists(paths.Home)
	if err != nil || exists {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(paths.Home), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(paths.Home))
	}
	if err := os.Rename(legacy, paths.Home); err != nil {
		return errors.Wrapf(err, "failed to move %s", legacy)
	}

	logger.G(ctx).WithField("from", legacy).WithField("to", paths.Home).Info("moved legacy mskills directory")
	return nil
}
