package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/mskills/pkg/apply"
	"github.com/jingkaihe/mskills/pkg/logger"
)

// ApplyConfig holds the apply command options
type ApplyConfig struct {
	Mode  apply.Mode
	Force bool
	Only  string
}

// NewApplyConfig returns the apply defaults
func NewApplyConfig() *ApplyConfig {
	return &ApplyConfig{
		Mode:  apply.ModeSymlink,
		Force: false,
		Only:  "",
	}
}

var applyMode = NewApplyConfig().Mode

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply skills to all enabled agents",
	Long: `Link (or copy) every installed skill into the skills directory of each
enabled agent. Existing entries that do not already point at the store are
reported as conflicts and left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config, err := getApplyConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		report, err := current.engine.Apply(cmd.Context(), apply.Options{
			Mode:  config.Mode,
			Force: config.Force,
			Only:  config.Only,
		})
		if err != nil {
			return err
		}

		current.out.Warnings(report.Warnings)
		if err := report.Err(); err != nil {
			logger.G(cmd.Context()).WithError(err).
				WithField("failed", report.Count(apply.Failed)).
				Debug("some skills could not be applied")
		}
		if len(report.Results) == 0 {
			return nil
		}
		current.out.Success("Skills applied (%d created, %d replaced, %d unchanged, %d conflicts, %d failed)",
			report.Count(apply.Created), report.Count(apply.Replaced), report.Count(apply.Unchanged),
			report.Count(apply.Conflict), report.Count(apply.Failed))
		return nil
	},
}

func init() {
	defaults := NewApplyConfig()
	applyCmd.Flags().VarP(&applyMode, "mode", "m", "Apply mode (symlink or copy); defaults to apply.mode from settings")
	applyCmd.Flags().BoolP("force", "f", defaults.Force, "Overwrite existing entries in agent directories")
	applyCmd.Flags().String("only", defaults.Only, "Only apply skills whose name matches this glob")

	rootCmd.AddCommand(applyCmd)
}

func getApplyConfigFromFlags(cmd *cobra.Command) (*ApplyConfig, error) {
	config := NewApplyConfig()

	if cmd.Flags().Changed("mode") {
		config.Mode = applyMode
	} else if current.settings.Apply.Mode != "" {
		mode, err := apply.ParseMode(current.settings.Apply.Mode)
		if err != nil {
			return nil, err
		}
		config.Mode = mode
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	if only, err := cmd.Flags().GetString("only"); err == nil {
		config.Only = only
	}
	return config, nil
}
