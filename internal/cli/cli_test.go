package cli

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/testhelpers/scenario"
)

func execute(t *testing.T, s *scenario.Scenario, args ...string) error {
	t.Helper()
	rootCmd := NewRootCmd("test")
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.ExecuteContext(WithRuntime(context.Background(), s.Context))
}

func stubPrompt(t *testing.T, isInteractive, answer bool) *[]string {
	t.Helper()
	var asked []string
	prevInteractive, prevConfirm := interactive, confirm
	interactive = func() bool { return isInteractive }
	confirm = func(message string) (bool, error) {
		asked = append(asked, message)
		return answer, nil
	}
	t.Cleanup(func() {
		interactive, confirm = prevInteractive, prevConfirm
	})
	return &asked
}

func stack(t *testing.T) *scenario.Scenario {
	return scenario.NewScenario(t).WithStack(map[string]string{
		"A": "main",
		"B": "A",
		"C": "B",
	})
}

func TestCommands(t *testing.T) {
	t.Run("create stacks on the current branch", func(t *testing.T) {
		s := scenario.NewScenario(t)

		require.NoError(t, execute(t, s, "create", "A"))
		require.NoError(t, execute(t, s, "c", "B"))
		require.NoError(t, execute(t, s, "create", "X", "--parent", "main"))

		require.Equal(t, "A", s.Parent("B"))
		require.Equal(t, "main", s.Parent("X"))
		require.Equal(t, "X", s.Current())
	})

	t.Run("init refuses to run twice", func(t *testing.T) {
		s := scenario.NewScenario(t)

		err := execute(t, s, "init")
		require.ErrorIs(t, err, errors.ErrAlreadyInitialized)
		require.NoError(t, execute(t, s, "init", "--force", "--trunk", "main"))
	})

	t.Run("sync from an explicit branch", func(t *testing.T) {
		s := stack(t)

		require.NoError(t, execute(t, s, "sync", "B"))
		require.Equal(t, []string{"rebase A onto main", "rebase B onto A", "rebase C onto B"}, s.Rebases())
	})

	t.Run("conflict then abort", func(t *testing.T) {
		s := stack(t).Checkout("C")
		s.Git.ScriptRebase("B", git.RebaseOutcome{Status: git.RebaseConflict, Code: 1})

		err := execute(t, s, "restack")
		require.ErrorIs(t, err, errors.ErrRebaseConflict)
		require.Contains(t, s.Output.String(), "gstack continue")

		err = execute(t, s, "sync")
		require.ErrorIs(t, err, errors.ErrPendingOperationExists)

		require.NoError(t, execute(t, s, "abort"))
		require.Nil(t, s.State())
		require.Equal(t, "C", s.Current())
	})

	t.Run("conflict then continue", func(t *testing.T) {
		s := stack(t).Checkout("C")
		s.Git.ScriptRebase("A", git.RebaseOutcome{Status: git.RebaseConflict, Code: 1})

		require.Error(t, execute(t, s, "sync"))
		require.NoError(t, execute(t, s, "continue"))
		require.Nil(t, s.State())
	})

	t.Run("submit restacks by default", func(t *testing.T) {
		s := stack(t).Checkout("B")

		require.NoError(t, execute(t, s, "submit", "--draft"))
		require.Len(t, s.Rebases(), 3)
		require.Len(t, s.GitHub.Created, 3)
		require.True(t, s.GitHub.Created[0].Draft)
	})

	t.Run("submit without restack", func(t *testing.T) {
		s := stack(t).Checkout("B")

		require.NoError(t, execute(t, s, "submit", "--no-restack", "A", "B"))
		require.Empty(t, s.Rebases())
		require.Len(t, s.GitHub.Created, 2)
	})

	t.Run("submit leaves a submit record on conflict", func(t *testing.T) {
		s := stack(t).Checkout("B")
		s.Git.ScriptRebase("A", git.RebaseOutcome{Status: git.RebaseConflict, Code: 1})

		require.ErrorIs(t, execute(t, s, "submit"), errors.ErrRebaseConflict)
		require.Equal(t, config.CommandSubmit, s.State().ActiveCommand)

		require.NoError(t, execute(t, s, "continue"))
		require.Len(t, s.GitHub.Created, 3)
	})

	t.Run("push only touches one branch", func(t *testing.T) {
		s := stack(t).Checkout("A")

		require.NoError(t, execute(t, s, "push", "C"))
		require.Equal(t, []string{"push C upstream=true"}, s.Git.CallsWithPrefix("push "))
	})

	t.Run("move", func(t *testing.T) {
		s := stack(t)

		require.NoError(t, execute(t, s, "move", "--source", "C", "--onto", "A"))
		require.Equal(t, "A", s.Parent("C"))
		require.Equal(t, []string{"rebase C onto A"}, s.Rebases())
	})

	t.Run("move requires --onto", func(t *testing.T) {
		s := stack(t)

		require.Error(t, execute(t, s, "move", "--source", "C"))
		require.Equal(t, "B", s.Parent("C"))
	})

	t.Run("log", func(t *testing.T) {
		s := stack(t).Checkout("C")

		require.NoError(t, execute(t, s, "log"))
		require.Contains(t, s.Output.String(), "◉ C")
	})
}

func TestDeleteCommand(t *testing.T) {
	t.Run("unmerged branch fails without a terminal", func(t *testing.T) {
		s := stack(t)
		asked := stubPrompt(t, false, true)

		err := execute(t, s, "delete", "B")
		require.ErrorIs(t, err, errors.ErrBranchNotMerged)
		require.Empty(t, *asked)
		require.True(t, s.Config().IsTracked("B"))
	})

	t.Run("confirmed deletion", func(t *testing.T) {
		s := stack(t)
		asked := stubPrompt(t, true, true)

		require.NoError(t, execute(t, s, "delete", "B"))
		require.Len(t, *asked, 1)
		require.Contains(t, (*asked)[0], "B is not merged")
		require.Equal(t, "A", s.Parent("C"))
	})

	t.Run("declined deletion keeps the branch", func(t *testing.T) {
		s := stack(t).Checkout("B")
		asked := stubPrompt(t, true, false)

		require.NoError(t, execute(t, s, "delete"))
		require.Len(t, *asked, 1)
		require.True(t, s.Config().IsTracked("B"))
		require.Equal(t, "B", s.Current())
	})

	t.Run("force never asks", func(t *testing.T) {
		s := stack(t)
		asked := stubPrompt(t, true, false)

		require.NoError(t, execute(t, s, "delete", "--force", "B"))
		require.Empty(t, *asked)
		require.False(t, s.Config().IsTracked("B"))
	})
}

func TestShouldPassThrough(t *testing.T) {
	rootCmd := NewRootCmd("test")

	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"status"}, true},
		{[]string{"commit", "-m", "msg"}, true},
		{[]string{"sync"}, false},
		{[]string{"restack"}, false},
		{[]string{"s"}, false},
		{[]string{"help"}, false},
		{[]string{"completion", "bash"}, false},
		{[]string{"__complete", "sync", ""}, false},
		{[]string{"--version"}, false},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ShouldPassThrough(rootCmd, tt.args), "%v", tt.args)
	}
}

func TestPrintError(t *testing.T) {
	t.Run("pending operation gets a tip", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, errors.NewPendingOperationError("sync"))
		require.Contains(t, buf.String(), "Error: ")
		require.Contains(t, buf.String(), "gstack abort")
	})

	t.Run("not initialized gets a tip", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, errors.ErrNotInitialized)
		require.Equal(t, "Error: "+errors.ErrNotInitialized.Error()+"\nHint: run 'gstack init' to start tracking branches.\n", buf.String())
	})

	t.Run("plain errors do not", func(t *testing.T) {
		var buf bytes.Buffer
		PrintError(&buf, errors.ErrBranchNotMerged)
		require.Equal(t, "Error: "+errors.ErrBranchNotMerged.Error()+"\n", buf.String())
	})
}
