package actions_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/actions"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/internal/github"
	"gstack.dev/gstack/testhelpers/scenario"
)

func TestSubmitAction(t *testing.T) {
	t.Run("creates one pull request and is idempotent", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"A": "main"}).Checkout("A")

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"A"}, result.Pushed)
		require.Equal(t, []string{"A"}, result.Created)
		require.Len(t, s.GitHub.Created, 1)
		require.Equal(t, "main", s.GitHub.Created[0].Base)
		require.Equal(t, "commit on A", s.GitHub.Created[0].Title)
		require.Equal(t, []string{"push A upstream=true"}, s.Git.CallsWithPrefix("push "))
		require.Equal(t, "https://github.com/owner/repo/pull/1", s.Config().ReviewURL("A"))

		s.Git.Calls = nil
		result, err = actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		require.Empty(t, result.Created)
		require.Empty(t, result.Updated)
		require.Len(t, s.GitHub.Created, 1)
		require.Empty(t, s.GitHub.BaseUpdates)
		require.Equal(t, []string{"push A upstream=false"}, s.Git.CallsWithPrefix("push "))

		require.Len(t, s.GitHub.Comments["A"], 1)
		require.Equal(t, 1, s.GitHub.CommentsCreated)
		require.Equal(t, 1, s.GitHub.CommentsEdited)
	})

	t.Run("submits the whole stack parents first", func(t *testing.T) {
		s := linearStack(t).Checkout("B")

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Draft: true})
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B", "C"}, result.Pushed)
		require.Len(t, s.GitHub.Created, 3)
		for i, want := range [][2]string{{"A", "main"}, {"B", "A"}, {"C", "B"}} {
			require.Equal(t, want[0], s.GitHub.Created[i].Head)
			require.Equal(t, want[1], s.GitHub.Created[i].Base)
			require.True(t, s.GitHub.Created[i].Draft)
		}
		require.Empty(t, s.Rebases())
		require.Equal(t, "B", s.Current())
	})

	t.Run("retargets a pull request whose base is stale", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"B": "main"}).Checkout("B")
		s.GitHub.AddPR("B", "A", github.StateOpen)

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"B"}, result.Updated)
		require.Empty(t, result.Created)
		require.Equal(t, []string{"B->main"}, s.GitHub.BaseUpdates)
	})

	t.Run("skips a merged pull request", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"A": "main"}).Checkout("A")
		s.GitHub.AddPR("A", "main", github.StateMerged)

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"A"}, result.Skipped)
		require.Empty(t, s.GitHub.Created)
		require.Contains(t, s.Output.String(), "already merged")
	})

	t.Run("opens a new pull request when the old one is closed", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"A": "main"}).Checkout("A")
		s.GitHub.AddPR("A", "main", github.StateClosed)

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"A"}, result.Created)
		require.Equal(t, "https://github.com/owner/repo/pull/2", s.Config().ReviewURL("A"))
	})

	t.Run("a rejected push does not stop the other branches", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"A": "main", "X": "main"})
		s.Git.PushScript["A"] = git.PushOutcome{Status: git.PushRejected, Code: 1, Detail: "! [rejected] A -> A (stale info)"}

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.ErrorIs(t, err, errors.ErrPushRejected)

		var submitErr *errors.SubmitError
		require.ErrorAs(t, err, &submitErr)
		require.Len(t, submitErr.Failures, 1)
		require.Equal(t, []string{"X"}, result.Pushed)
		require.Equal(t, []string{"X"}, result.Created)
		require.Empty(t, s.Config().ReviewURL("A"))
	})

	t.Run("a review failure is collected", func(t *testing.T) {
		s := scenario.NewScenario(t).WithStack(map[string]string{"A": "main", "X": "main"})
		s.GitHub.CreateErr["A"] = fmt.Errorf("validation failed")

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.ErrorIs(t, err, errors.ErrReviewOperationFailed)
		require.Equal(t, []string{"A", "X"}, result.Pushed)
		require.Equal(t, []string{"X"}, result.Created)
	})

	t.Run("requires GitHub authentication before pushing", func(t *testing.T) {
		s := linearStack(t).Checkout("A")
		s.GitHub.Authenticated = false

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.ErrorIs(t, err, errors.ErrReviewAuthRequired)
		require.Empty(t, s.Git.CallsWithPrefix("push "))
	})

	t.Run("refuses the trunk", func(t *testing.T) {
		s := linearStack(t)

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Branches: []string{"main"}})
		require.ErrorIs(t, err, errors.ErrTrunkOperation)
	})

	t.Run("dirty working tree", func(t *testing.T) {
		s := linearStack(t).Checkout("A").Dirty()

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.ErrorIs(t, err, errors.ErrDirtyWorkdir)
	})

	t.Run("restacks before pushing", func(t *testing.T) {
		s := linearStack(t).Checkout("C")

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Restack: true})
		require.NoError(t, err)
		require.Equal(t, []string{"A", "B", "C"}, result.Sync.Processed)
		require.Equal(t, []string{"A", "B", "C"}, result.Created)
		require.Equal(t, []string{
			"rebase A onto main",
			"rebase B onto A",
			"rebase C onto B",
		}, s.Rebases())
		require.Nil(t, s.State())
	})

	t.Run("restack drops merged branches and retargets their children", func(t *testing.T) {
		s := linearStack(t).Checkout("C")
		s.GitHub.SetMerged("A")

		result, err := actions.SubmitAction(s.Context, actions.SubmitOptions{Restack: true})
		require.NoError(t, err)
		require.Equal(t, []string{"A"}, result.Sync.Merged)
		require.Equal(t, []string{"B", "C"}, result.Pushed)
		require.Equal(t, "main", s.GitHub.Created[0].Base)
	})

	t.Run("posts the stack diagram on every pull request", func(t *testing.T) {
		s := linearStack(t).Checkout("B")

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)

		for _, branch := range []string{"A", "B", "C"} {
			require.Len(t, s.GitHub.Comments[branch], 1)
			body := s.GitHub.Comments[branch][0]
			require.Contains(t, body, actions.StackCommentMarker)
			require.Contains(t, body, "graph TD")
			require.Contains(t, body, "main --> A")
			require.Contains(t, body, "A --> B")
			require.Contains(t, body, "B --> C")
			require.Contains(t, body, `B["B #2"]`)
			require.Contains(t, body, `click B href "https://github.com/owner/repo/pull/2" _blank`)
			require.Contains(t, body, "style B fill:#90EE90")
			require.NotContains(t, body, "style A fill")
		}
	})
}

func TestPushAction(t *testing.T) {
	t.Run("pushes only the named branch", func(t *testing.T) {
		s := linearStack(t).Checkout("A")

		result, err := actions.PushAction(s.Context, actions.PushOptions{BranchName: "B"})
		require.NoError(t, err)
		require.Equal(t, []string{"B"}, result.Pushed)
		require.Equal(t, []string{"push B upstream=true"}, s.Git.CallsWithPrefix("push "))
		require.Equal(t, "A", s.GitHub.Created[0].Base)
	})

	t.Run("defaults to the current branch", func(t *testing.T) {
		s := linearStack(t).Checkout("C")

		result, err := actions.PushAction(s.Context, actions.PushOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"C"}, result.Pushed)
	})

	t.Run("keeps the whole stack in the diagram", func(t *testing.T) {
		s := linearStack(t).Checkout("C")

		_, err := actions.SubmitAction(s.Context, actions.SubmitOptions{})
		require.NoError(t, err)
		_, err = actions.PushAction(s.Context, actions.PushOptions{BranchName: "B"})
		require.NoError(t, err)

		require.Len(t, s.GitHub.Comments["B"], 1)
		body := s.GitHub.Comments["B"][0]
		require.Contains(t, body, "main --> A")
		require.Contains(t, body, `A["A #1"]`)
		require.Contains(t, body, "A --> B")
		require.Contains(t, body, "B --> C")
	})

	t.Run("untracked branch", func(t *testing.T) {
		s := linearStack(t)
		s.Git.AddBranches("loose")

		_, err := actions.PushAction(s.Context, actions.PushOptions{BranchName: "loose"})
		require.ErrorIs(t, err, errors.ErrBranchNotFound)
	})
}
