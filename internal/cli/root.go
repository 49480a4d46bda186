package cli

import (
	"os"

	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/output"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version string) *cobra.Command {
	var (
		settingsPath string
		debug        bool
	)

	rootCmd := &cobra.Command{
		Use:   "gstack",
		Short: "gstack manages stacks of dependent git branches",
		Long: `gstack manages stacks of dependent git branches.

Every tracked branch has a parent. When a parent moves, 'gstack sync' rebases
its descendants onto it, and 'gstack submit' keeps one GitHub pull request per
branch pointed at its parent. Commands gstack does not know are passed through
to git.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			output.ConfigureColors(os.Stdout)
			cmd.SetContext(withOptions(cmd.Context(), globalOptions{
				SettingsPath: settingsPath,
				Debug:        debug,
			}))
		},
	}

	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "", "Path to the settings file (default $XDG_CONFIG_HOME/gstack/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug output")

	rootCmd.AddCommand(
		newInitCmd(),
		newCreateCmd(),
		newSyncCmd(),
		newContinueCmd(),
		newAbortCmd(),
		newSubmitCmd(),
		newPushCmd(),
		newLogCmd(),
		newDeleteCmd(),
		newMoveCmd(),
	)

	return rootCmd
}
