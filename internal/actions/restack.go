package actions

import (
	"fmt"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/engine"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// runQueue rebases every queue entry from the cursor onto its parent,
// persisting the record after each branch. A conflict or git failure stops the
// run with the record saved so continue can pick it up. When the queue is
// exhausted the record is deleted and the original branch checked out again.
func runQueue(ctx *runtime.Context, cfg *engine.StackConfig, state *config.OperationState, result *SyncResult) error {
	splog := ctx.Splog
	result.OperationID = state.ID

	for !state.IsComplete() {
		branch := state.CurrentBranch()

		if !cfg.IsTracked(branch) {
			splog.Debug("[%s] %s is no longer tracked, skipping.", state.ID, branch)
			result.Skipped = append(result.Skipped, branch)
			if err := advance(ctx, state); err != nil {
				return err
			}
			continue
		}

		parent := cfg.GetParent(branch)
		if err := ctx.Git.Checkout(ctx.Context, branch, false); err != nil {
			return err
		}

		outcome := ctx.Git.Rebase(ctx.Context, parent)
		switch outcome.Status {
		case git.RebaseDone:
			splog.Info("Restacked %s on %s.", output.ColorBranchName(branch, false), output.ColorBranchName(parent, false))
			result.Processed = append(result.Processed, branch)
			if err := advance(ctx, state); err != nil {
				return err
			}
		case git.RebaseConflict:
			result.ConflictBranch = branch
			splog.Debug("[%s] conflict rebasing %s onto %s: %s", state.ID, branch, parent, outcome.Detail)
			return outcome.Err(branch)
		default:
			splog.Debug("[%s] rebase of %s failed with code %d", state.ID, branch, outcome.Code)
			return outcome.Err(branch)
		}
	}

	return finishOperation(ctx, state, result)
}

// advance moves the cursor past the current entry and persists the record
func advance(ctx *runtime.Context, state *config.OperationState) error {
	state.Advance()
	if err := ctx.Store.SaveState(state); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// finishOperation deletes the record and returns to the branch the operation
// started on
func finishOperation(ctx *runtime.Context, state *config.OperationState, result *SyncResult) error {
	if err := ctx.Store.ClearState(); err != nil {
		return err
	}
	result.Completed = true
	ctx.Splog.Debug("[%s] %s operation complete.", state.ID, state.ActiveCommand)
	return restoreHead(ctx, state.OriginalHead)
}

// restoreHead checks out branch when it still exists
func restoreHead(ctx *runtime.Context, branch string) error {
	if branch == "" || !ctx.Git.BranchExists(ctx.Context, branch) {
		return nil
	}
	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err == nil && current == branch {
		return nil
	}
	return ctx.Git.Checkout(ctx.Context, branch, false)
}
