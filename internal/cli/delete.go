package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

var (
	// interactive reports whether prompts can be shown
	interactive = output.IsTTY
	// confirm asks a yes/no question
	confirm = func(message string) (bool, error) {
		var ok bool
		prompt := &survey.Confirm{Message: message, Default: false}
		if err := survey.AskOne(prompt, &ok); err != nil {
			return false, err
		}
		return ok, nil
	}
)

// newDeleteCmd creates the delete command
func newDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "delete [name]",
		Aliases: []string{"d"},
		Short:   "Delete a branch and stop tracking it (local-only)",
		Long: `Delete a branch and stop tracking it (local-only).

Children of the branch move onto its parent. If the branch is not merged into
its parent, asks for confirmation, or fails when not run in a terminal; --force
skips the check.

This command does not close pull requests on GitHub.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBranches,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, func(ctx *runtime.Context) error {
				opts := actions.DeleteOptions{Force: force}
				if len(args) > 0 {
					opts.BranchName = args[0]
				}
				return deleteWithConfirmation(ctx, opts)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete the branch even if it is not merged")

	return cmd
}

func deleteWithConfirmation(ctx *runtime.Context, opts actions.DeleteOptions) error {
	err := actions.DeleteAction(ctx, opts)
	if opts.Force || !errors.Is(err, errors.ErrBranchNotMerged) || !interactive() {
		return err
	}

	name := opts.BranchName
	if name == "" {
		if name, err = ctx.Git.CurrentBranch(ctx.Context); err != nil {
			return err
		}
	}

	ok, err := confirm(fmt.Sprintf("%s is not merged into its parent. Delete it anyway?", name))
	if err != nil {
		return err
	}
	if !ok {
		ctx.Splog.Info("Kept %s.", output.ColorBranchName(name, false))
		return nil
	}

	opts.BranchName = name
	opts.Force = true
	return actions.DeleteAction(ctx, opts)
}
