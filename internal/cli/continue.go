package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newContinueCmd creates the continue command
func newContinueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "continue",
		Short: "Continue the operation halted by a rebase conflict",
		Long: `Continue the operation halted by a rebase conflict.

Continues the rebase in progress and resumes the remaining branches. An
interrupted submit pushes and updates pull requests once the rebases finish.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.ContinueAction(ctx)
				return err
			})
		},
	}

	return cmd
}
