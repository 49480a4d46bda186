package actions

import (
	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// MoveOptions contains options for the move command
type MoveOptions struct {
	// BranchName defaults to the current branch
	BranchName string
	Onto       string
}

// MoveAction gives a branch a new parent and rebases it and its descendants
func MoveAction(ctx *runtime.Context, opts MoveOptions) (*SyncResult, error) {
	if err := ensureNoPendingOperation(ctx); err != nil {
		return nil, err
	}
	if err := ensureCleanWorkingTree(ctx); err != nil {
		return nil, err
	}
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return nil, err
	}
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return nil, err
	}
	if cfg.IsTrunk(branch) {
		return nil, errors.ErrTrunkOperation
	}
	if !cfg.IsTracked(branch) {
		return nil, errors.NewBranchNotFoundError(branch)
	}
	if err := requireKnownBranch(cfg, opts.Onto); err != nil {
		return nil, err
	}

	if err := cfg.SetParent(branch, opts.Onto); err != nil {
		return nil, err
	}
	if err := ctx.Store.SaveConfig(cfg); err != nil {
		return nil, err
	}
	ctx.Splog.Info("Moved %s onto %s.", output.ColorBranchName(branch, false), output.ColorBranchName(opts.Onto, false))
	// The parent change stays even if the rebase below is aborted
	retargetPullRequest(ctx, branch, opts.Onto)

	descendants, err := cfg.GetDescendants(branch)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	state, err := startOperation(ctx, cfg, config.CommandSync, append([]string{branch}, descendants...))
	if err != nil {
		return nil, err
	}
	if err := runQueue(ctx, cfg, state, result); err != nil {
		reportInterruption(ctx, result, err)
		return result, err
	}
	return result, nil
}

// retargetPullRequest points the open pull request of branch at parent.
// Lookup and update failures only warn.
func retargetPullRequest(ctx *runtime.Context, branch, parent string) {
	if ctx.GitHub == nil || !ctx.GitHub.IsAuthenticated(ctx.Context) {
		return
	}
	info, err := ctx.GitHub.GetInfo(ctx.Context, branch)
	if err != nil {
		ctx.Splog.Warn("Could not look up the pull request for %s: %v", branch, err)
		return
	}
	if info == nil || !info.IsOpen() || info.Base == parent {
		return
	}
	if err := ctx.GitHub.UpdateBase(ctx.Context, branch, parent); err != nil {
		ctx.Splog.Warn("Could not retarget the pull request for %s: %v", branch, err)
		return
	}
	ctx.Splog.Info("Retargeted pull request for %s onto %s.", output.ColorBranchName(branch, false), parent)
}
