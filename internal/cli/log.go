package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newLogCmd creates the log command
func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "log",
		Aliases: []string{"l", "ls"},
		Short:   "Show the tracked branches as a tree",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, actions.LogAction)
		},
	}
}
