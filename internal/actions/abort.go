package actions

import (
	"fmt"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// AbortAction cancels the pending operation: any in-progress rebase is
// aborted, the record deleted and the original branch checked out
func AbortAction(ctx *runtime.Context) error {
	state, err := ctx.Store.LoadState()
	if err != nil {
		return err
	}
	if state == nil {
		return errors.ErrNoPendingOperation
	}

	if ctx.Git.IsRebaseInProgress(ctx.Context) {
		ctx.Splog.Info("Aborting rebase...")
		if err := ctx.Git.AbortRebase(ctx.Context); err != nil {
			return fmt.Errorf("failed to abort rebase: %w", err)
		}
	}

	if err := ctx.Store.ClearState(); err != nil {
		return err
	}
	ctx.Splog.Debug("[%s] aborted %s operation", state.ID, state.ActiveCommand)

	if err := restoreHead(ctx, state.OriginalHead); err != nil {
		return err
	}
	ctx.Splog.Info("Aborted %s. Back on %s.", state.ActiveCommand, output.ColorBranchName(state.OriginalHead, true))
	return nil
}
