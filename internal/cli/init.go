package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/runtime"
)

// newInitCmd creates the init command
func newInitCmd() *cobra.Command {
	var (
		trunk string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Start tracking stacks in this repository",
		Long: `Start tracking stacks in this repository.

Writes .gstack_config.json at the repository root. The trunk defaults to main,
then master. Commit the file to share the stack layout with your team.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				_, err := actions.InitAction(ctx, actions.InitOptions{Trunk: trunk, Force: force})
				return err
			})
		},
	}

	cmd.Flags().StringVar(&trunk, "trunk", "", "The name of your trunk branch")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reinitialize, forgetting every tracked branch")
	_ = cmd.RegisterFlagCompletionFunc("trunk", completeBranches)

	return cmd
}
