package git_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/testhelpers"
)

func TestRealRunnerRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves root and git dir from a subdirectory", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CommitFile("sub/dir/file.txt", "x", "nested"))

		runner, err := git.NewRealRunner(ctx, filepath.Join(scene.Dir, "sub", "dir"), "")
		require.NoError(t, err)

		wantRoot, err := filepath.EvalSymlinks(scene.Dir)
		require.NoError(t, err)
		gotRoot, err := filepath.EvalSymlinks(runner.RepoRoot())
		require.NoError(t, err)
		require.Equal(t, wantRoot, gotRoot)
		require.Equal(t, ".git", filepath.Base(runner.GitDir()))
	})

	t.Run("fails outside a repository", func(t *testing.T) {
		_, err := git.NewRealRunner(ctx, t.TempDir(), "origin")
		require.Error(t, err)
	})

	t.Run("current branch and existence", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := newRunner(t, scene)

		current, err := runner.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "main", current)

		require.True(t, runner.BranchExists(ctx, "main"))
		require.False(t, runner.BranchExists(ctx, "feature"))

		require.NoError(t, runner.Checkout(ctx, "feature", true))
		current, err = runner.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "feature", current)
		require.True(t, runner.BranchExists(ctx, "feature"))

		require.NoError(t, runner.Checkout(ctx, "main", false))
		current, err = runner.CurrentBranch(ctx)
		require.NoError(t, err)
		require.Equal(t, "main", current)
	})

	t.Run("detached head is not a branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.RunGitCommand("checkout", "--detach", "HEAD"))
		runner := newRunner(t, scene)

		_, err := runner.CurrentBranch(ctx)
		require.ErrorIs(t, err, errors.ErrNotOnBranch)
	})

	t.Run("checkout of missing branch is a version control error", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := newRunner(t, scene)

		err := runner.Checkout(ctx, "nope", false)
		require.ErrorIs(t, err, errors.ErrVersionControlFailed)
	})

	t.Run("working tree cleanliness", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := newRunner(t, scene)

		clean, err := runner.IsWorkingTreeClean(ctx)
		require.NoError(t, err)
		require.True(t, clean)

		require.NoError(t, scene.Repo.WriteFile("untracked.txt", "x"))
		clean, err = runner.IsWorkingTreeClean(ctx)
		require.NoError(t, err)
		require.False(t, clean)
	})

	t.Run("ignored paths do not dirty the tree", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		runner := newRunner(t, scene, git.WithIgnoredPaths(".gstack_config.json"))

		require.NoError(t, scene.Repo.WriteFile(".gstack_config.json", "{}"))
		clean, err := runner.IsWorkingTreeClean(ctx)
		require.NoError(t, err)
		require.True(t, clean)

		require.NoError(t, scene.Repo.WriteFile("other.txt", "x"))
		clean, err = runner.IsWorkingTreeClean(ctx)
		require.NoError(t, err)
		require.False(t, clean)
	})

	t.Run("ancestry and commit subjects", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("feature"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("add feature", "f"))
		runner := newRunner(t, scene)

		ok, err := runner.IsAncestor(ctx, "main", "feature")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = runner.IsAncestor(ctx, "feature", "main")
		require.NoError(t, err)
		require.False(t, ok)

		_, err = runner.IsAncestor(ctx, "ghost", "main")
		require.ErrorIs(t, err, errors.ErrVersionControlFailed)

		subject, err := runner.CommitSubject(ctx, "feature")
		require.NoError(t, err)
		require.Equal(t, "add feature", subject)
	})

	t.Run("delete branch", func(t *testing.T) {
		scene := testhelpers.NewScene(t, testhelpers.BasicSceneSetup)
		require.NoError(t, scene.Repo.CreateAndCheckoutBranch("unmerged"))
		require.NoError(t, scene.Repo.CreateChangeAndCommit("work", "w"))
		require.NoError(t, scene.Repo.CheckoutBranch("main"))
		require.NoError(t, scene.Repo.CreateBranch("merged"))
		runner := newRunner(t, scene)

		require.NoError(t, runner.DeleteBranch(ctx, "merged", false))
		require.False(t, runner.BranchExists(ctx, "merged"))

		require.ErrorIs(t, runner.DeleteBranch(ctx, "unmerged", false), errors.ErrVersionControlFailed)
		require.NoError(t, runner.DeleteBranch(ctx, "unmerged", true))
		require.False(t, runner.BranchExists(ctx, "unmerged"))
		testhelpers.ExpectBranches(t, scene.Repo, []string{"main"})
	})
}
