package testhelpers

import (
	"context"
	"fmt"
	"sync"

	gserrors "gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
)

// FakeGit is an in-memory git.Runner. Rebase and push outcomes are scripted
// per branch; everything it is asked to do is appended to Calls.
type FakeGit struct {
	mu sync.Mutex

	Root      string
	Dir       string
	Remote    string
	Current   string
	Clean     bool
	Branches  map[string]bool
	Upstreams map[string]bool
	Subjects  map[string]string

	// RebaseScript maps a branch to the outcomes of its next rebases, in order.
	// Branches without a script rebase cleanly.
	RebaseScript map[string][]git.RebaseOutcome
	// ContinueScript holds the outcomes of the next ContinueRebase calls
	ContinueScript []git.RebaseOutcome
	// PushScript maps a branch to the outcome of every push of it
	PushScript map[string]git.PushOutcome

	Calls []string

	ancestors map[[2]string]bool
	rebasing  bool
	rebaseOf  [2]string // onto, branch
}

var _ git.Runner = (*FakeGit)(nil)

// NewFakeGit returns a clean repository with trunk checked out
func NewFakeGit(root, gitDir, trunk string) *FakeGit {
	return &FakeGit{
		Root:         root,
		Dir:          gitDir,
		Remote:       "https://github.com/owner/repo.git",
		Current:      trunk,
		Clean:        true,
		Branches:     map[string]bool{trunk: true},
		Upstreams:    map[string]bool{},
		Subjects:     map[string]string{},
		RebaseScript: map[string][]git.RebaseOutcome{},
		PushScript:   map[string]git.PushOutcome{},
		ancestors:    map[[2]string]bool{},
	}
}

// AddBranches registers existing branches
func (f *FakeGit) AddBranches(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, name := range names {
		f.Branches[name] = true
	}
}

// SetAncestor records whether ancestor is reachable from descendant
func (f *FakeGit) SetAncestor(ancestor, descendant string, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ancestors[[2]string{ancestor, descendant}] = ok
}

// ScriptRebase queues outcomes for the next rebases of branch
func (f *FakeGit) ScriptRebase(branch string, outcomes ...git.RebaseOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RebaseScript[branch] = append(f.RebaseScript[branch], outcomes...)
}

// StartConflict puts the fake into an in-progress rebase, as if a previous
// process stopped on a conflict rebasing branch onto onto
func (f *FakeGit) StartConflict(branch, onto string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Current = branch
	f.rebasing = true
	f.rebaseOf = [2]string{onto, branch}
}

// CallLog returns a copy of the recorded calls
func (f *FakeGit) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

// CallsWithPrefix returns the recorded calls that start with prefix
func (f *FakeGit) CallsWithPrefix(prefix string) []string {
	var matched []string
	for _, call := range f.CallLog() {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			matched = append(matched, call)
		}
	}
	return matched
}

func (f *FakeGit) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

func (f *FakeGit) RepoRoot() string { return f.Root }

func (f *FakeGit) GitDir() string { return f.Dir }

func (f *FakeGit) RemoteURL(context.Context) (string, error) {
	if f.Remote == "" {
		return "", gserrors.NewVersionControlError("remote get-url", "", 2, "no such remote")
	}
	return f.Remote, nil
}

func (f *FakeGit) CurrentBranch(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Current == "" {
		return "", gserrors.ErrNotOnBranch
	}
	return f.Current, nil
}

func (f *FakeGit) BranchExists(_ context.Context, name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Branches[name]
}

func (f *FakeGit) Checkout(_ context.Context, name string, create bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("checkout %s", name)
	if f.rebasing {
		return gserrors.NewVersionControlError("checkout", name, 128, "you need to resolve your current index first")
	}
	if create {
		if f.Branches[name] {
			return gserrors.NewVersionControlError("checkout", name, 128, "a branch named '"+name+"' already exists")
		}
		f.ancestors[[2]string{f.Current, name}] = true
		f.Branches[name] = true
	} else if !f.Branches[name] {
		return gserrors.NewVersionControlError("checkout", name, 1, "pathspec '"+name+"' did not match")
	}
	f.Current = name
	return nil
}

func (f *FakeGit) DeleteBranch(_ context.Context, name string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete %s force=%t", name, force)
	if f.Current == name {
		return gserrors.NewVersionControlError("branch -d", name, 1, "cannot delete branch checked out")
	}
	if !f.Branches[name] {
		return gserrors.NewVersionControlError("branch -d", name, 1, "branch not found")
	}
	delete(f.Branches, name)
	return nil
}

func (f *FakeGit) IsWorkingTreeClean(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Clean, nil
}

func (f *FakeGit) IsAncestor(_ context.Context, ancestor, descendant string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.Branches[ancestor] || !f.Branches[descendant] {
		return false, gserrors.NewVersionControlError("merge-base", descendant, 128, "not a valid object name")
	}
	return ancestor == descendant || f.ancestors[[2]string{ancestor, descendant}], nil
}

func (f *FakeGit) CommitSubject(_ context.Context, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if subject, ok := f.Subjects[branch]; ok {
		return subject, nil
	}
	return "commit on " + branch, nil
}

func (f *FakeGit) Rebase(_ context.Context, onto string) git.RebaseOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	branch := f.Current
	f.record("rebase %s onto %s", branch, onto)

	outcome := git.RebaseOK
	if script := f.RebaseScript[branch]; len(script) > 0 {
		outcome = script[0]
		f.RebaseScript[branch] = script[1:]
	}

	switch outcome.Status {
	case git.RebaseDone:
		f.ancestors[[2]string{onto, branch}] = true
	case git.RebaseConflict:
		f.rebasing = true
		f.rebaseOf = [2]string{onto, branch}
	}
	return outcome
}

func (f *FakeGit) IsRebaseInProgress(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rebasing
}

func (f *FakeGit) ContinueRebase(context.Context) git.RebaseOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("rebase --continue")
	if !f.rebasing {
		return git.RebaseOutcome{Status: git.RebaseFatal, Code: 128, Detail: "No rebase in progress?"}
	}

	outcome := git.RebaseOK
	if len(f.ContinueScript) > 0 {
		outcome = f.ContinueScript[0]
		f.ContinueScript = f.ContinueScript[1:]
	}
	if outcome.Status == git.RebaseDone {
		f.rebasing = false
		f.ancestors[f.rebaseOf] = true
	}
	return outcome
}

func (f *FakeGit) AbortRebase(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("rebase --abort")
	if !f.rebasing {
		return gserrors.NewVersionControlError("rebase --abort", "", 128, "No rebase in progress?")
	}
	f.rebasing = false
	return nil
}

func (f *FakeGit) Push(_ context.Context, branch string, setUpstream bool) git.PushOutcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("push %s upstream=%t", branch, setUpstream)

	outcome, ok := f.PushScript[branch]
	if !ok {
		outcome = git.PushOutcome{Status: git.PushDone}
	}
	if outcome.Status == git.PushDone && setUpstream {
		f.Upstreams[branch] = true
	}
	return outcome
}

func (f *FakeGit) HasUpstream(_ context.Context, branch string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Upstreams[branch]
}
