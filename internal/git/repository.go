package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	gserrors "gstack.dev/gstack/internal/errors"
)

// RealRunner implements Runner on the git binary, with go-git for ref reads
type RealRunner struct {
	cmd      *CommandRunner
	repo     *gogit.Repository
	repoRoot string
	gitDir   string
	remote   string
	ignored  []string
}

// Option configures a RealRunner
type Option func(*RealRunner)

// WithIgnoredPaths excludes repository-relative paths from the clean working tree check
func WithIgnoredPaths(paths ...string) Option {
	return func(r *RealRunner) {
		r.ignored = append(r.ignored, paths...)
	}
}

// NewRealRunner opens the repository containing dir. Pushes go to remote.
func NewRealRunner(ctx context.Context, dir, remote string, opts ...Option) (*RealRunner, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	repo, err := gogit.PlainOpenWithOptions(absPath, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	cmd := NewCommandRunner(absPath)
	root, err := cmd.Run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("failed to find repository root: %w", err)
	}
	gitDir, err := cmd.Run(ctx, "rev-parse", "--absolute-git-dir")
	if err != nil {
		return nil, fmt.Errorf("failed to find git directory: %w", err)
	}

	if remote == "" {
		remote = "origin"
	}
	r := &RealRunner{
		cmd:      NewCommandRunner(root),
		repo:     repo,
		repoRoot: root,
		gitDir:   gitDir,
		remote:   remote,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RepoRoot returns the root directory of the working tree
func (r *RealRunner) RepoRoot() string {
	return r.repoRoot
}

// GitDir returns the absolute path of the git directory
func (r *RealRunner) GitDir() string {
	return r.gitDir
}

// RemoteURL returns the fetch URL of the configured remote
func (r *RealRunner) RemoteURL(_ context.Context) (string, error) {
	rem, err := r.repo.Remote(r.remote)
	if err != nil {
		return "", fmt.Errorf("failed to read remote %s: %w", r.remote, err)
	}
	urls := rem.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", r.remote)
	}
	return urls[0], nil
}

// CurrentBranch returns the checked out branch
func (r *RealRunner) CurrentBranch(ctx context.Context) (string, error) {
	head, err := r.repo.Head()
	if err == nil {
		if !head.Name().IsBranch() {
			return "", gserrors.ErrNotOnBranch
		}
		return head.Name().Short(), nil
	}
	// Unborn HEAD in a fresh repository
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		name, symErr := r.cmd.Run(ctx, "symbolic-ref", "--short", "HEAD")
		if symErr == nil {
			return name, nil
		}
	}
	return "", fmt.Errorf("failed to get HEAD: %w", err)
}

// BranchExists reports whether a local branch exists
func (r *RealRunner) BranchExists(_ context.Context, name string) bool {
	_, err := r.repo.Reference(plumbing.NewBranchReferenceName(name), true)
	return err == nil
}

// Checkout switches to name, creating it from HEAD when create is set
func (r *RealRunner) Checkout(ctx context.Context, name string, create bool) error {
	args := []string{"checkout", name}
	if create {
		args = []string{"checkout", "-b", name}
	}
	if _, err := r.cmd.Run(ctx, args...); err != nil {
		return vcsError("checkout", name, err)
	}
	return nil
}

// DeleteBranch deletes a local branch; force deletes it even when unmerged
func (r *RealRunner) DeleteBranch(ctx context.Context, name string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := r.cmd.Run(ctx, "branch", flag, name); err != nil {
		return vcsError("branch delete", name, err)
	}
	return nil
}

// IsWorkingTreeClean reports whether there are no uncommitted or untracked changes
func (r *RealRunner) IsWorkingTreeClean(ctx context.Context) (bool, error) {
	args := []string{"status", "--porcelain"}
	if len(r.ignored) > 0 {
		args = append(args, "--", ".")
		for _, p := range r.ignored {
			args = append(args, ":(exclude)"+p)
		}
	}
	out, err := r.cmd.Run(ctx, args...)
	if err != nil {
		return false, vcsError("status", "", err)
	}
	return strings.TrimSpace(out) == "", nil
}

// IsAncestor reports whether ancestor is reachable from descendant
func (r *RealRunner) IsAncestor(ctx context.Context, ancestor, descendant string) (bool, error) {
	_, err := r.cmd.Run(ctx, "merge-base", "--is-ancestor", ancestor, descendant)
	if err == nil {
		return true, nil
	}
	var cmdErr *gserrors.GitCommandError
	if errors.As(err, &cmdErr) && cmdErr.ExitCode() == 1 {
		return false, nil
	}
	return false, vcsError("merge-base", descendant, err)
}

// CommitSubject returns the subject line of the tip commit of branch
func (r *RealRunner) CommitSubject(ctx context.Context, branch string) (string, error) {
	out, err := r.cmd.Run(ctx, "log", "-1", "--format=%s", branch)
	if err != nil {
		return "", vcsError("log", branch, err)
	}
	return out, nil
}

// vcsError converts a failed command into a VersionControlError
func vcsError(op, branch string, err error) error {
	code := -1
	detail := err.Error()
	var cmdErr *gserrors.GitCommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode()
		detail = strings.TrimSpace(cmdErr.Stderr)
		if detail == "" {
			detail = strings.TrimSpace(cmdErr.Stdout)
		}
	}
	return gserrors.NewVersionControlError(op, branch, code, detail)
}
