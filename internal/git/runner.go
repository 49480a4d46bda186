// Package git provides a wrapper around git commands and go-git for repository operations.
package git

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	gserrors "gstack.dev/gstack/internal/errors"
)

// DefaultCommandTimeout is the default timeout for git commands
const DefaultCommandTimeout = 5 * time.Minute

// CommandRunner handles execution of git commands
type CommandRunner struct {
	workingDir string
	binary     string
}

// NewCommandRunner creates a new CommandRunner for git
func NewCommandRunner(workingDir string) *CommandRunner {
	return &CommandRunner{workingDir: workingDir, binary: "git"}
}

// Run executes a command with the given context and returns the trimmed output
func (r *CommandRunner) Run(ctx context.Context, args ...string) (string, error) {
	out, err := r.run(ctx, nil, args...)
	return strings.TrimSpace(out), err
}

// RunWithEnv executes a command with extra environment variables
func (r *CommandRunner) RunWithEnv(ctx context.Context, env []string, args ...string) (string, error) {
	out, err := r.run(ctx, env, args...)
	return strings.TrimSpace(out), err
}

func (r *CommandRunner) run(ctx context.Context, env []string, args ...string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	// If no timeout/deadline is set in the context, add the default one
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCommandTimeout)
		defer cancel()
	}

	binary := r.binary
	if binary == "" {
		binary = "git"
	}
	cmd := exec.CommandContext(ctx, binary, args...)
	if r.workingDir != "" {
		cmd.Dir = r.workingDir
	}
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout.String(), gserrors.NewGitCommandError(binary, args, stdout.String(), stderr.String(), ctx.Err())
		}
		return stdout.String(), gserrors.NewGitCommandError(binary, args, stdout.String(), stderr.String(), err)
	}
	return stdout.String(), nil
}

// RunInteractive executes a git command with stdin/stdout/stderr connected to
// the terminal and returns the process exit code.
func RunInteractive(dir string, args ...string) (int, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}

// Runner defines the git operations gstack needs.
// This allows actions to run against both real git and scripted fakes.
type Runner interface {
	// Repository
	RepoRoot() string
	GitDir() string
	RemoteURL(ctx context.Context) (string, error)

	// Branches
	CurrentBranch(ctx context.Context) (string, error)
	BranchExists(ctx context.Context, name string) bool
	Checkout(ctx context.Context, name string, create bool) error
	DeleteBranch(ctx context.Context, name string, force bool) error
	IsWorkingTreeClean(ctx context.Context) (bool, error)
	IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error)
	CommitSubject(ctx context.Context, branch string) (string, error)

	// Rebase
	Rebase(ctx context.Context, onto string) RebaseOutcome
	IsRebaseInProgress(ctx context.Context) bool
	ContinueRebase(ctx context.Context) RebaseOutcome
	AbortRebase(ctx context.Context) error

	// Remote
	Push(ctx context.Context, branch string, setUpstream bool) PushOutcome
	HasUpstream(ctx context.Context, branch string) bool
}
