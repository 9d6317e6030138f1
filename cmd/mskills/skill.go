package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

// ListConfig holds the list command options
type ListConfig struct {
	JSON bool
}

// NewListConfig returns the list defaults
func NewListConfig() *ListConfig {
	return &ListConfig{JSON: false}
}

var installCmd = &cobra.Command{
	Use:     "install <source> [name]",
	Aliases: []string{"add"},
	Short:   "Install a skill from a GitHub URL or local path",
	Long: `Install a skill into the mskills store. The source is either a local
directory containing SKILL.md or a GitHub URL pointing at a skill directory.
The name defaults to the last segment of the source.

Examples:
  mskills install ./my-skill
  mskills install https://github.com/acme/skills/tree/main/skills/pdf
  mskills install https://github.com/acme/skills/tree/main/skills/pdf pdf-tools`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) > 1 {
			name = args[1]
		}

		skill, err := current.skills.Install(cmd.Context(), args[0], name)
		if err != nil {
			return err
		}
		current.out.Success("Skill '%s' installed to %s", skill.Name, skill.Path)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <name> [source]",
	Short: "Update a skill from its source",
	Long: `Refresh an installed skill. Without a source, the git reference the skill
was installed from is used. Passing a local path replaces the skill with that
directory and forgets the stored git reference.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := ""
		if len(args) > 1 {
			source = args[1]
		}

		result, err := current.skills.Update(cmd.Context(), args[0], source)
		if err != nil {
			return err
		}
		current.out.Success("Skill '%s' updated (%s)", result.Name, result.Method)
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:     "remove <name>...",
	Aliases: []string{"rm"},
	Short:   "Remove skills",
	Long:    `Remove one or more skills from the store and the registry. Links already applied to agents are left in place until the next apply --force.`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failures *multierror.Error
		for _, name := range args {
			if err := current.skills.Remove(cmd.Context(), name); err != nil {
				current.out.Error(err, "")
				failures = multierror.Append(failures, err)
				continue
			}
			current.out.Success("Skill '%s' removed", name)
		}
		if err := failures.ErrorOrNil(); err != nil {
			return reportedError{cause: err}
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed skills",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		config := getListConfigFromFlags(cmd)

		skills, err := current.skills.ListRegistered()
		if err != nil {
			return err
		}

		if config.JSON {
			data, err := json.MarshalIndent(skills, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(current.out.Writer(), string(data))
			return nil
		}

		if len(skills) == 0 {
			current.out.Info("No skills configured.")
			return nil
		}

		w := tabwriter.NewWriter(current.out.Writer(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSOURCE\tPATH")
		for _, s := range skills {
			source := s.SourceURL
			if source == "" {
				source = "local"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.Name, source, s.Path)
		}
		return w.Flush()
	},
}

func init() {
	listDefaults := NewListConfig()
	listCmd.Flags().Bool("json", listDefaults.JSON, "Print skills as JSON")

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(listCmd)
}

func getListConfigFromFlags(cmd *cobra.Command) *ListConfig {
	config := NewListConfig()
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	return config
}
