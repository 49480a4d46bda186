package actions

import (
	"fmt"
	"strings"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
	"gstack.dev/gstack/internal/utils"
)

// CreateOptions contains options for the create command
type CreateOptions struct {
	BranchName string
	// Parent defaults to the current branch
	Parent string
}

// CreateAction creates a branch on top of its parent, checks it out and tracks it
func CreateAction(ctx *runtime.Context, opts CreateOptions) error {
	name := strings.TrimSpace(opts.BranchName)
	if name == "" {
		return fmt.Errorf("branch name is required")
	}
	if err := utils.ValidateBranchName(name); err != nil {
		return err
	}

	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return err
	}
	if err := ensureNoPendingOperation(ctx); err != nil {
		return err
	}
	if cfg.IsTrunk(name) || cfg.IsTracked(name) || ctx.Git.BranchExists(ctx.Context, name) {
		return errors.NewBranchAlreadyExistsError(name)
	}

	parent, err := resolveBranch(ctx, opts.Parent)
	if err != nil {
		return err
	}
	if err := requireKnownBranch(cfg, parent); err != nil {
		return err
	}

	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err != nil || current != parent {
		if err := ctx.Git.Checkout(ctx.Context, parent, false); err != nil {
			return err
		}
	}
	if err := ctx.Git.Checkout(ctx.Context, name, true); err != nil {
		return err
	}

	if err := cfg.AddBranch(name, parent); err != nil {
		return err
	}
	if err := ctx.Store.SaveConfig(cfg); err != nil {
		return err
	}

	ctx.Splog.Info("Created %s on top of %s.", output.ColorBranchName(name, true), output.ColorBranchName(parent, false))
	return nil
}
