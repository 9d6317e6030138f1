package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/jingkaihe/mskills/pkg/osutil"
)

// Settings are the optional knobs read from settings.yaml and MSKILLS_* env vars
type Settings struct {
	StoreDir     string            `mapstructure:"store_dir" json:"store_dir,omitempty"`
	LogLevel     string            `mapstructure:"log_level" json:"log_level,omitempty"`
	LogFormat    string            `mapstructure:"log_format" json:"log_format,omitempty"`
	Apply        ApplySettings     `mapstructure:"apply" json:"apply"`
	CopyExclude  []string          `mapstructure:"copy_exclude" json:"copy_exclude,omitempty"`
	Git          GitSettings       `mapstructure:"git" json:"git"`
	CustomAgents map[string]string `mapstructure:"custom_agents" json:"custom_agents,omitempty"`
}

// ApplySettings configures the apply command
type ApplySettings struct {
	Mode string `mapstructure:"mode" json:"mode"`
}

// GitSettings configures the git client
type GitSettings struct {
	Binary        string `mapstructure:"binary" json:"binary"`
	DefaultBranch string `mapstructure:"default_branch" json:"default_branch"`
}

// SetDefaults registers the default value of every settings key. Keys must
// be known to viper for MSKILLS_* environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper, paths Paths) {
	v.SetDefault("store_dir", paths.DefaultStoreDir())
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "text")
	v.SetDefault("apply.mode", "symlink")
	v.SetDefault("copy_exclude", []string{})
	v.SetDefault("git.binary", "git")
	v.SetDefault("git.default_branch", "main")
	v.SetDefault("custom_agents", map[string]string{})
}

// Load reads settings.yaml (if present) and the environment into Settings
func Load(v *viper.Viper, paths Paths) (*Settings, error) {
	SetDefaults(v, paths)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(paths.SettingsFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, errors.Wrapf(err, "failed to read settings file %s", paths.SettingsFile)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}

	storeDir, err := ExpandHome(s.StoreDir)
	if err != nil {
		return nil, err
	}
	s.StoreDir = storeDir

	for id, dir := range s.CustomAgents {
		expanded, err := ExpandHome(dir)
		if err != nil {
			return nil, err
		}
		s.CustomAgents[id] = expanded
	}

	if err := osutil.ValidatePatterns(s.CopyExclude); err != nil {
		return nil, errors.Wrap(err, "invalid copy_exclude setting")
	}

	return &s, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || os.IsNotExist(errors.Cause(err))
}
