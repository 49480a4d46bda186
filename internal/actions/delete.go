package actions

import (
	"fmt"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// DeleteOptions contains options for the delete command
type DeleteOptions struct {
	BranchName string
	// Force deletes the branch even when its parent does not contain it
	Force bool
}

// DeleteAction stops tracking a branch and deletes it. Its children move up
// to its parent.
func DeleteAction(ctx *runtime.Context, opts DeleteOptions) error {
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return err
	}
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return err
	}
	if cfg.IsTrunk(branch) {
		return fmt.Errorf("cannot delete %s: %w", branch, errors.ErrTrunkOperation)
	}
	if !cfg.IsTracked(branch) {
		return errors.NewBranchNotFoundError(branch)
	}
	if err := ensureNoPendingOperation(ctx); err != nil {
		return err
	}

	parent := cfg.GetParent(branch)
	exists := ctx.Git.BranchExists(ctx.Context, branch)

	if !opts.Force && exists {
		merged, err := ctx.Git.IsAncestor(ctx.Context, branch, parent)
		if err != nil {
			return err
		}
		if !merged {
			return fmt.Errorf("%s is not merged into %s (use --force to delete anyway): %w", branch, parent, errors.ErrBranchNotMerged)
		}
	}

	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err == nil && current == branch {
		if err := ctx.Git.Checkout(ctx.Context, parent, false); err != nil {
			return err
		}
		ctx.Splog.Info("Checked out %s.", output.ColorBranchName(parent, true))
	}

	children, err := cfg.RemoveBranch(branch)
	if err != nil {
		return err
	}

	if exists {
		if err := ctx.Git.DeleteBranch(ctx.Context, branch, true); err != nil {
			return err
		}
	}

	if err := ctx.Store.SaveConfig(cfg); err != nil {
		return err
	}

	ctx.Splog.Info("Deleted %s.", output.ColorBranchName(branch, false))
	for _, child := range children {
		ctx.Splog.Info("Moved %s onto %s.", output.ColorBranchName(child, false), output.ColorBranchName(parent, false))
	}
	return nil
}
