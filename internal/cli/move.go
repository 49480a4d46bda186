package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newMoveCmd creates the move command
func newMoveCmd() *cobra.Command {
	var (
		onto   string
		source string
	)

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a branch onto a new parent and rebase it with its descendants",
		Long: `Move a branch onto a new parent and rebase it with its descendants.

The branch defaults to the current one. A branch cannot move onto itself or
one of its descendants.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.MoveAction(ctx, actions.MoveOptions{
					BranchName: source,
					Onto:       onto,
				})
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&onto, "onto", "o", "", "Branch to move onto")
	cmd.Flags().StringVar(&source, "source", "", "Branch to move (defaults to the current branch)")
	_ = cmd.MarkFlagRequired("onto")
	_ = cmd.RegisterFlagCompletionFunc("onto", completeBranches)
	_ = cmd.RegisterFlagCompletionFunc("source", completeBranches)

	return cmd
}
