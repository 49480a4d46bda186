package actions

import (
	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// SyncOptions contains options for the sync command
type SyncOptions struct {
	// Branch is where the sync starts; empty means the current branch and
	// the trunk means every tracked branch
	Branch string
}

// SyncAction rebases the stack of the start branch and all its descendants,
// each onto its parent, parents first
func SyncAction(ctx *runtime.Context, opts SyncOptions) (*SyncResult, error) {
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
	start, err := resolveBranch(ctx, opts.Branch)
	if err != nil {
		return nil, err
	}
	if err := requireKnownBranch(cfg, start); err != nil {
		return nil, err
	}

	set, err := stackSet(cfg, start)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{}
	result.Merged, result.Reparented = detectMerged(ctx, cfg, set)
	for branch, parent := range result.Reparented {
		ctx.Splog.Info("Reparented %s onto %s (parent was merged).", output.ColorBranchName(branch, false), output.ColorBranchName(parent, false))
	}
	for _, branch := range result.Merged {
		ctx.Splog.Info("Skipping %s: its pull request is merged.", output.ColorBranchName(branch, false))
	}
	if len(result.Reparented) > 0 {
		if err := ctx.Store.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}

	state, err := startOperation(ctx, cfg, config.CommandSync, without(set, result.Merged))
	if err != nil {
		return nil, err
	}
	if state == nil {
		ctx.Splog.Info("Nothing to sync.")
		result.Completed = true
		return result, nil
	}

	if err := runQueue(ctx, cfg, state, result); err != nil {
		reportInterruption(ctx, result, err)
		return result, err
	}

	ctx.Splog.Info("Synced %d branch(es).", len(result.Processed))
	return result, nil
}

// reportInterruption tells the user how to resume after a stopped run
func reportInterruption(ctx *runtime.Context, result *SyncResult, err error) {
	if result.ConflictBranch != "" && errors.Is(err, errors.ErrRebaseConflict) {
		ctx.Splog.Warn("Hit a conflict rebasing %s.", output.ColorBranchName(result.ConflictBranch, false))
		ctx.Splog.Tip("Resolve the conflict and run 'gstack continue', or run 'gstack abort' to stop.")
		return
	}
	ctx.Splog.Tip("Fix the problem and run 'gstack continue', or run 'gstack abort' to stop.")
}
