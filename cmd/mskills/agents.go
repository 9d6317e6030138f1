package main

import (
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage target agents",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var agentsAddCmd = &cobra.Command{
	Use:   "add <agent>...",
	Short: "Enable agents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachAgent(args, "enabled", func(id string) error {
			return current.agents.Enable(cmd.Context(), id)
		})
	},
}

var agentsRemoveCmd = &cobra.Command{
	Use:   "remove <agent>...",
	Short: "Disable agents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return forEachAgent(args, "disabled", func(id string) error {
			return current.agents.Disable(cmd.Context(), id)
		})
	},
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled and supported agents",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		enabled, err := current.agents.Enabled()
		if err != nil {
			return err
		}

		current.out.Section("Enabled Agents")
		if len(enabled) == 0 {
			current.out.Faint("  (none)")
		}
		for _, id := range enabled {
			current.out.Info("  %s", id)
		}

		current.out.Info("")
		current.out.Section("Supported Agents")
		for _, id := range current.agents.Supported() {
			target, _ := current.catalog.Lookup(id)
			current.out.Info("  %-20s %s", id, target.SkillsDirectory)
		}
		return nil
	},
}

func init() {
	agentsCmd.AddCommand(agentsAddCmd)
	agentsCmd.AddCommand(agentsRemoveCmd)
	agentsCmd.AddCommand(agentsListCmd)
	rootCmd.AddCommand(agentsCmd)
}

func forEachAgent(ids []string, verb string, fn func(string) error) error {
	var failures *multierror.Error
	for _, id := range ids {
		if err := fn(id); err != nil {
			current.out.Error(err, "")
			failures = multierror.Append(failures, err)
			continue
		}
		current.out.Success("Agent '%s' %s", id, verb)
	}
	if err := failures.ErrorOrNil(); err != nil {
		return reportedError{cause: err}
	}
	return nil
}
