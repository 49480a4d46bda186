package git_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/testhelpers"
)

func newRunner(t *testing.T, scene *testhelpers.Scene, opts ...git.Option) *git.RealRunner {
	t.Helper()
	runner, err := git.NewRealRunner(context.Background(), scene.Dir, "origin", opts...)
	require.NoError(t, err)
	return runner
}

func TestRebase(t *testing.T) {
	ctx := context.Background()

	t.Run("rebases branch onto moved parent", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("branch1 change", "b1"))

		// Parent moves forward
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("main update", "main"))
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))

		runner := newRunner(t, scene)
		outcome := runner.Rebase(ctx, "main")
		require.Equal(t, git.RebaseDone, outcome.Status)
		require.NoError(t, outcome.Err("branch1"))
		require.True(t, scene.Repo.IsAncestor("main", "branch1"))
		require.False(t, runner.IsRebaseInProgress(ctx))
		testhelpers.ExpectCommits(t, scene.Repo, "branch1", []string{"branch1 change", "main update", "1"})
	})

	t.Run("reports conflict and leaves rebase in progress", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "branch1 version\n", "branch1 edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "main version\n", "main edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))

		runner := newRunner(t, scene)
		outcome := runner.Rebase(ctx, "main")
		require.Equal(t, git.RebaseConflict, outcome.Status)
		require.True(t, runner.IsRebaseInProgress(ctx))

		err := outcome.Err("branch1")
		require.ErrorIs(t, err, errors.ErrRebaseConflict)

		t.Run("continue after resolving finishes the rebase", func(t *testing.T) {
			require.NoError(t, scene.Repo.WriteFile("shared.txt", "resolved\n"))
			require.NoError(t, scene.Repo.MarkMergeConflictsAsResolved())

			outcome := runner.ContinueRebase(ctx)
			require.Equal(t, git.RebaseDone, outcome.Status)
			require.False(t, runner.IsRebaseInProgress(ctx))
			require.True(t, scene.Repo.IsAncestor("main", "branch1"))
		})
	})

	t.Run("continue without resolving stays in conflict", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "branch1\n", "branch1 edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "main\n", "main edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))

		runner := newRunner(t, scene)
		require.Equal(t, git.RebaseConflict, runner.Rebase(ctx, "main").Status)

		outcome := runner.ContinueRebase(ctx)
		require.Equal(t, git.RebaseConflict, outcome.Status)
		require.True(t, runner.IsRebaseInProgress(ctx))
	})

	t.Run("abort restores the branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("branch1"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "branch1\n", "branch1 edit"))
		before, err := scene.Repo.GetRevision("branch1")
		require.NoError(t, err)
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CommitFile("shared.txt", "main\n", "main edit"))
		require.NoError(t, scene.Repo.CheckoutBranch("branch1"))

		runner := newRunner(t, scene)
		require.Equal(t, git.RebaseConflict, runner.Rebase(ctx, "main").Status)
		require.NoError(t, runner.AbortRebase(ctx))
		require.False(t, runner.IsRebaseInProgress(ctx))

		after, err := scene.Repo.GetRevision("branch1")
		require.NoError(t, err)
		require.Equal(t, before, after)

		current, err := runner.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "branch1", current)
	})

	t.Run("unknown upstream is fatal", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := newRunner(t, scene)

		outcome := runner.Rebase(ctx, "does-not-exist")
		require.Equal(t, git.RebaseFatal, outcome.Status)
		require.NotZero(t, outcome.Code)
		require.ErrorIs(t, outcome.Err("main"), errors.ErrVersionControlFailed)
		require.False(t, runner.IsRebaseInProgress(ctx))
	})
}

func TestRebaseStatusString(t *testing.T) {
	require.Equal(t, "done", git.RebaseDone.String())
	require.Equal(t, "conflict", git.RebaseConflict.String())
	require.Equal(t, "fatal", git.RebaseFatal.String())
}
