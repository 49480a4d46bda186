// Package scenario provides a high-level test scenario that combines a real
// store on disk with in-memory git and GitHub fakes and a runtime Context,
// giving action tests a terse API.
package scenario

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/engine"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
	"gstack.dev/gstack/testhelpers"
)

// Scenario is one repository as seen by the actions
type Scenario struct {
	T       *testing.T
	Git     *testhelpers.FakeGit
	GitHub  *testhelpers.FakeGitHub
	Store   *config.Store
	Context *runtime.Context
	Output  *bytes.Buffer
}

// NewScenario creates an initialized repository with trunk main checked out
func NewScenario(t *testing.T) *Scenario {
	t.Helper()

	root := t.TempDir()
	gitDir := filepath.Join(root, ".git")
	require.NoError(t, os.MkdirAll(gitDir, 0755))

	fakeGit := testhelpers.NewFakeGit(root, gitDir, "main")
	fakeGitHub := testhelpers.NewFakeGitHub()
	store := config.NewStore(root, gitDir)
	out := &bytes.Buffer{}

	ctx := runtime.NewContext(context.Background(), store, fakeGit, fakeGitHub, output.NewTestSplog(out))

	_, err := store.InitConfig("main", false)
	require.NoError(t, err)

	return &Scenario{
		T:       t,
		Git:     fakeGit,
		GitHub:  fakeGitHub,
		Store:   store,
		Context: ctx,
		Output:  out,
	}
}

// WithStack tracks branches given as child -> parent and creates them in git
func (s *Scenario) WithStack(stack map[string]string) *Scenario {
	s.T.Helper()
	cfg := s.Config()

	pending := make(map[string]string, len(stack))
	for child, parent := range stack {
		pending[child] = parent
	}
	for len(pending) > 0 {
		progressed := false
		for child, parent := range pending {
			if cfg.IsTrunk(parent) || cfg.IsTracked(parent) {
				require.NoError(s.T, cfg.AddBranch(child, parent))
				s.Git.AddBranches(child)
				s.Git.SetAncestor(parent, child, true)
				delete(pending, child)
				progressed = true
			}
		}
		require.True(s.T, progressed, "stack has branches with unknown parents: %v", pending)
	}

	require.NoError(s.T, s.Store.SaveConfig(cfg))
	return s
}

// Checkout moves the fake to branch
func (s *Scenario) Checkout(branch string) *Scenario {
	s.T.Helper()
	require.NoError(s.T, s.Git.Checkout(context.Background(), branch, false))
	s.Git.Calls = nil
	return s
}

// Dirty marks the working tree as having uncommitted changes
func (s *Scenario) Dirty() *Scenario {
	s.Git.Clean = false
	return s
}

// Config loads the persisted stack config
func (s *Scenario) Config() *engine.StackConfig {
	s.T.Helper()
	cfg, err := s.Store.LoadConfig()
	require.NoError(s.T, err)
	return cfg
}

// State loads the persisted operation record, nil when none is pending
func (s *Scenario) State() *config.OperationState {
	s.T.Helper()
	state, err := s.Store.LoadState()
	require.NoError(s.T, err)
	return state
}

// Parent returns the persisted parent of branch
func (s *Scenario) Parent(branch string) string {
	s.T.Helper()
	return s.Config().GetParent(branch)
}

// Rebases returns the rebase calls recorded by the git fake
func (s *Scenario) Rebases() []string {
	return s.Git.CallsWithPrefix("rebase ")
}

// Current returns the branch checked out in the git fake
func (s *Scenario) Current() string {
	s.T.Helper()
	current, err := s.Git.CurrentBranch(context.Background())
	require.NoError(s.T, err)
	return current
}
