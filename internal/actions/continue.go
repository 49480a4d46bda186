package actions

import (
	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// ContinueAction resumes the pending operation after a conflict or failure
func ContinueAction(ctx *runtime.Context) (*ContinueResult, error) {
	state, err := ctx.Store.LoadState()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, errors.ErrNoPendingOperation
	}
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return nil, err
	}

	result := &ContinueResult{Sync: &SyncResult{OperationID: state.ID}}
	ctx.Splog.Debug("[%s] continuing %s at %d/%d", state.ID, state.ActiveCommand, state.Cursor, len(state.Queue))

	if !state.IsComplete() {
		branch := state.CurrentBranch()
		done, err := resolveCursorEntry(ctx, cfg.GetParent(branch), branch, result.Sync)
		if err != nil {
			reportInterruption(ctx, result.Sync, err)
			return result, err
		}
		if done {
			result.Sync.Processed = append(result.Sync.Processed, branch)
			if err := advance(ctx, state); err != nil {
				return result, err
			}
		}
	}

	if err := runQueue(ctx, cfg, state, result.Sync); err != nil {
		reportInterruption(ctx, result.Sync, err)
		return result, err
	}

	if state.ActiveCommand == config.CommandSubmit {
		submit, err := submitBranches(ctx, state.Queue, state.OriginalHead, state.Draft)
		submit.Sync = result.Sync
		result.Submit = submit
		return result, err
	}

	ctx.Splog.Info("Synced %d branch(es).", len(result.Sync.Processed))
	return result, nil
}

// resolveCursorEntry settles the entry the previous run stopped on. With a
// rebase in progress git is asked to continue it. Without one the entry is
// done when branch already contains parent; otherwise runQueue retries it.
func resolveCursorEntry(ctx *runtime.Context, parent, branch string, result *SyncResult) (bool, error) {
	if ctx.Git.IsRebaseInProgress(ctx.Context) {
		outcome := ctx.Git.ContinueRebase(ctx.Context)
		switch outcome.Status {
		case git.RebaseDone:
			ctx.Splog.Info("Resolved rebase conflict for %s.", output.ColorBranchName(branch, false))
			return true, nil
		case git.RebaseConflict:
			result.ConflictBranch = branch
			return false, outcome.Err(branch)
		default:
			return false, outcome.Err(branch)
		}
	}

	if parent == "" || !ctx.Git.BranchExists(ctx.Context, branch) {
		return false, nil
	}
	contains, err := ctx.Git.IsAncestor(ctx.Context, parent, branch)
	if err != nil {
		return false, err
	}
	return contains, nil
}
