// Package config resolves where mskills keeps its registry, settings and
// skill store, and loads the optional application settings.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DirName is the directory created under the user config root
	DirName = "mskills"
	// RegistryFileName holds the skill registry
	RegistryFileName = "config.json"
	// SettingsFileName holds optional application settings
	SettingsFileName = "settings.yaml"
	// StoreDirName is the default skill store under the mskills directory
	StoreDirName = "skills"

	// EnvHome overrides the mskills directory entirely
	EnvHome = "MSKILLS_HOME"
	// EnvPrefix is prepended to every settings key read from the environment
	EnvPrefix = "MSKILLS"
)

// Paths is the set of locations mskills reads and writes
type Paths struct {
	Home         string `json:"home"`
	RegistryFile string `json:"registryFile"`
	SettingsFile string `json:"settingsFile"`
}

// ResolvePaths finds the mskills directory: MSKILLS_HOME if set, otherwise
// $XDG_CONFIG_HOME/mskills, otherwise ~/.config/mskills.
func ResolvePaths() (Paths, error) {
	home, err := resolveHome()
	if err != nil {
		return Paths{}, err
	}
	return PathsAt(home), nil
}

// PathsAt returns the Paths rooted at dir
func PathsAt(dir string) Paths {
	return Paths{
		Home:         dir,
		RegistryFile: filepath.Join(dir, RegistryFileName),
		SettingsFile: filepath.Join(dir, SettingsFileName),
	}
}

// DefaultStoreDir is the skill store used when settings name none
func (p Paths) DefaultStoreDir() string {
	return filepath.Join(p.Home, StoreDirName)
}

func resolveHome() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvHome)); dir != "" {
		return ExpandHome(dir)
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, DirName), nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(userHome, ".config", DirName), nil
}

// ExpandHome replaces a leading "~" with the user's home directory and
// returns an absolute path.
func ExpandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		path = filepath.Join(userHome, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %s", path)
	}
	return abs, nil
}
