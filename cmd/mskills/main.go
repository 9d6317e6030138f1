package main

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/mskills/pkg/presenter"
	"github.com/jingkaihe/mskills/pkg/skillerr"
)

var rootCmd = &cobra.Command{
	Use:   "mskills",
	Short: "Manage your AI agent skills in one place",
	Long: `mskills keeps every skill in one canonical store and applies it to the
skills directory of each enabled agent, as a symlink or a copy.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupApp,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "Log level (panic, fatal, error, warn, info, debug, trace)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text or json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress informational output; errors are still printed")
}

// reportedError wraps a failure whose details were already printed
type reportedError struct {
	cause error
}

func (e reportedError) Error() string { return e.cause.Error() }
func (e reportedError) Unwrap() error { return e.cause }

func run(ctx context.Context, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported reportedError
	if !errors.As(err, &reported) {
		presenter.NewWithOptions(rootCmd.OutOrStdout(), rootCmd.ErrOrStderr(), presenter.DetectColorMode()).Error(err, "")
	}
	return skillerr.ExitCode(err)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}
