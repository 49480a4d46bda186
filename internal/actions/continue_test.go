package actions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/github"
	"gstack.dev/gstack/internal/git"
)

func TestContinueAction(t *testing.T) {
	t.Run("without a pending operation", func(t *testing.T) {
		s := linearStack(t)

		_, err := actions.ContinueAction(s.Context)
		require.ErrorIs(t, err, errors.ErrNoPendingOperation)
	})

	t.Run("finishes the queue after the conflict is resolved", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.Git.ScriptRebase("A", conflict)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		s.Git.Calls = nil

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.True(t, result.Sync.Completed)
		require.Equal(t, []string{"A", "B", "C"}, result.Sync.Processed)
		require.Equal(t, []string{
			"rebase --continue",
			"rebase B onto A",
			"rebase C onto B",
		}, s.Rebases())
		require.Nil(t, s.State())
		require.Equal(t, "C", s.Current())
		require.Nil(t, result.Submit)
	})

	t.Run("a second conflict leaves the record in place", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.Git.ScriptRebase("A", conflict)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		before := s.State()

		s.Git.ContinueScript = []git.RebaseOutcome{conflict}
		result, err := actions.ContinueAction(s.Context)
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		require.Equal(t, "A", result.Sync.ConflictBranch)

		after := s.State()
		require.NotNil(t, after)
		require.Equal(t, before.ID, after.ID)
		require.Equal(t, 0, after.Cursor)
	})

	t.Run("conflict on a later branch moves the cursor", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.Git.ScriptRebase("A", conflict)
		s.Git.ScriptRebase("B", conflict)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrRebaseConflict)

		result, err := actions.ContinueAction(s.Context)
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		require.Equal(t, "B", result.Sync.ConflictBranch)
		require.Equal(t, 1, s.State().Cursor)

		result, err = actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.Equal(t, []string{"B", "C"}, result.Sync.Processed)
		require.Nil(t, s.State())
	})

	t.Run("retries a branch whose rebase failed before starting", func(t *testing.T) {
		s := linearStack(t).Checkout("A")
		s.Git.ScriptRebase("B", fatal)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrVersionControlFailed)
		s.Git.SetAncestor("A", "B", false)
		s.Git.Calls = nil

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.Equal(t, []string{"B", "C"}, result.Sync.Processed)
		require.Equal(t, []string{"rebase B onto A", "rebase C onto B"}, s.Rebases())
		require.Equal(t, "A", s.Current())
	})

	t.Run("counts a branch that already contains its parent as done", func(t *testing.T) {
		s := linearStack(t).Checkout("A")
		s.Git.ScriptRebase("B", fatal)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrVersionControlFailed)
		s.Git.Calls = nil

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.Equal(t, []string{"B", "C"}, result.Sync.Processed)
		require.Equal(t, []string{"rebase C onto B"}, s.Rebases())
	})

	t.Run("record written after the last branch only needs cleanup", func(t *testing.T) {
		s := linearStack(t)
		state := config.NewOperationState(config.CommandSync, []string{"A", "B"}, "B")
		state.Cursor = 2
		require.NoError(t, s.Store.SaveState(state))

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.True(t, result.Sync.Completed)
		require.Empty(t, s.Rebases())
		require.Nil(t, s.State())
		require.Equal(t, "B", s.Current())
	})

	t.Run("skips entries that are no longer tracked", func(t *testing.T) {
		s := linearStack(t)
		require.NoError(t, s.Store.SaveState(config.NewOperationState(config.CommandSync, []string{"ghost", "A"}, "main")))

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.Equal(t, []string{"ghost"}, result.Sync.Skipped)
		require.Equal(t, []string{"A"}, result.Sync.Processed)
		require.Nil(t, s.State())
	})

	t.Run("continues into the submit phase of an interrupted submit", func(t *testing.T) {
		s := linearStack(t).Checkout("B")
		s.Git.ScriptRebase("A", conflict)

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Restack: true})
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		require.Equal(t, config.CommandSubmit, s.State().ActiveCommand)
		require.Empty(t, s.GitHub.Created)

		result, err := actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.NotNil(t, result.Submit)
		require.Equal(t, []string{"A", "B", "C"}, result.Submit.Pushed)
		require.Equal(t, []string{"A", "B", "C"}, result.Submit.Created)
		require.Len(t, s.GitHub.Created, 3)
		require.Equal(t, github.CreatePROptions{
			Title: "commit on B",
			Body:  "Part of stack based on `A`.\n\nCreated with gstack.",
			Head:  "B",
			Base:  "A",
		}, s.GitHub.Created[1])
		require.Nil(t, s.State())
	})

	t.Run("an interrupted draft submit still opens drafts", func(t *testing.T) {
		s := linearStack(t).Checkout("B")
		s.Git.ScriptRebase("B", conflict)

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Restack: true, Draft: true})
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		require.True(t, s.State().Draft)

		_, err = actions.ContinueAction(s.Context)
		require.NoError(t, err)
		require.Len(t, s.GitHub.Created, 3)
		for _, created := range s.GitHub.Created {
			require.True(t, created.Draft, created.Head)
		}
	})
}

func TestAbortAction(t *testing.T) {
	t.Run("without a pending operation", func(t *testing.T) {
		s := linearStack(t)

		err := actions.AbortAction(s.Context)
		require.ErrorIs(t, err, errors.ErrNoPendingOperation)
	})

	t.Run("after a failure with no rebase in progress", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.Git.ScriptRebase("B", fatal)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.ErrorIs(t, err, errors.ErrVersionControlFailed)
		require.Equal(t, "B", s.Current())

		require.NoError(t, actions.AbortAction(s.Context))
		require.Nil(t, s.State())
		require.Equal(t, "C", s.Current())
		require.NotContains(t, s.Git.CallLog(), "rebase --abort")
	})

	t.Run("unblocks new operations", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.Git.ScriptRebase("A", conflict)

		_, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.Error(t, err)
		require.NoError(t, actions.AbortAction(s.Context))

		result, err := actions.SyncAction(s.Context, actions.SyncOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B", "C"}, result.Processed)
	})
}
