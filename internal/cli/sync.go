package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newSyncCmd creates the sync command
func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync [branch]",
		Aliases: []string{"restack"},
		Short:   "Rebase a stack onto its parents",
		Long: `Rebase a stack onto its parents.

Starting from the given branch (default: the current one), every branch on its
path from the trunk and every descendant is rebased onto its parent, parents
first. Branches whose pull request was merged are skipped and their children
move to the nearest unmerged ancestor. Run on the trunk to sync everything.

If a rebase stops on a conflict, resolve it and run 'gstack continue', or run
'gstack abort' to go back to where you started.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.SyncOptions{}
				if len(args) > 0 {
					opts.Branch = args[0]
				}
				_, err := actions.SyncAction(ctx, opts)
				return err
			})
		},
	}

	return cmd
}
