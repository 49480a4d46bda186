package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newAbortCmd creates the abort command
func newAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort",
		Short: "Abort the operation halted by a rebase conflict",
		Long: `Abort the operation halted by a rebase conflict.

Aborts the rebase in progress, forgets the remaining branches and checks out
the branch the operation started on. Branches already rebased stay rebased.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, actions.AbortAction)
		},
	}
}
