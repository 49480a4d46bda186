package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newSubmitCmd creates the submit command
func newSubmitCmd() *cobra.Command {
	var (
		noRestack bool
		draft     bool
	)

	cmd := &cobra.Command{
		Use:     "submit [branches...]",
		Aliases: []string{"s"},
		Short:   "Push a stack and create or update its pull requests",
		Long: `Push a stack and create or update its pull requests.

Without arguments the current branch, its ancestors and its descendants are
submitted. Branches are synced first unless --no-restack is given. Each branch
is pushed with --force-with-lease and gets a pull request targeting its parent;
existing pull requests are retargeted when the parent changed. A stack diagram
comment is kept up to date on every pull request.`,
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.SubmitAction(ctx, actions.SubmitOptions{
					Branches: args,
					Restack:  !noRestack,
					Draft:    draft,
				})
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&noRestack, "no-restack", false, "Push without syncing the stack first")
	cmd.Flags().BoolVarP(&draft, "draft", "d", false, "Open new pull requests as drafts")

	return cmd
}

// newPushCmd creates the push command
func newPushCmd() *cobra.Command {
	var draft bool

	cmd := &cobra.Command{
		Use:   "push [branch]",
		Short: "Push one branch and create or update its pull request",
		Long: `Push one branch and create or update its pull request.

Unlike submit, nothing is synced and no other branch is touched.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.PushOptions{Draft: draft}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				_, err := actions.PushAction(ctx, opts)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&draft, "draft", "d", false, "Open a new pull request as a draft")

	return cmd
}
