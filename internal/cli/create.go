package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newCreateCmd creates the create command
func newCreateCmd() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:     "create <name>",
		Aliases: []string{"c"},
		Short:   "Create a branch stacked on the current one",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				return actions.CreateAction(ctx, actions.CreateOptions{
					BranchName: args[0],
					Parent:     parent,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "Parent branch (defaults to the current branch)")
	_ = cmd.RegisterFlagCompletionFunc("parent", completeBranches)

	return cmd
}
