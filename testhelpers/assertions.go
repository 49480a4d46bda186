package testhelpers

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

// ExpectBranches asserts the local branches of repo, in any order
func ExpectBranches(t *testing.T, repo *GitRepo, expected []string) {
	t.Helper()

	branches, err := repo.GetLocalBranches()
	require.NoError(t, err, "Failed to list branches")

	actual := slices.Clone(branches)
	want := slices.Clone(expected)
	slices.Sort(actual)
	slices.Sort(want)
	require.Equal(t, want, actual, "Branches do not match")
}

// ExpectCommits asserts the newest commit subjects of branch, newest first.
// Only as many commits as expected holds are compared.
func ExpectCommits(t *testing.T, repo *GitRepo, branch string, expected []string) {
	t.Helper()

	output, err := repo.RunGitCommandAndGetOutput("log", "--format=%s", branch)
	require.NoError(t, err, "Failed to list commits")

	subjects := splitLines(output)
	require.GreaterOrEqual(t, len(subjects), len(expected), "Not enough commits on %s", branch)
	require.Equal(t, expected, subjects[:len(expected)], "Commits do not match")
}
