package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gserrors "gstack.dev/gstack/internal/errors"
)

// RebaseStatus is the result kind of a rebase step
type RebaseStatus int

const (
	// RebaseDone indicates the rebase was successful
	RebaseDone RebaseStatus = iota
	// RebaseConflict indicates the rebase stopped on a conflict and is still in progress
	RebaseConflict
	// RebaseFatal indicates git failed for a reason other than a conflict
	RebaseFatal
)

func (s RebaseStatus) String() string {
	switch s {
	case RebaseDone:
		return "done"
	case RebaseConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

// RebaseOutcome describes what happened to a rebase step.
// Code is the git exit code; Detail carries git's message for conflicts and failures.
type RebaseOutcome struct {
	Status RebaseStatus
	Code   int
	Detail string
}

// RebaseOK is the outcome of a clean rebase step
var RebaseOK = RebaseOutcome{Status: RebaseDone}

// Rebase replays the checked out branch onto onto. Local edits to tracked
// files are stashed around the rebase.
func (r *RealRunner) Rebase(ctx context.Context, onto string) RebaseOutcome {
	_, err := r.cmd.Run(ctx, "rebase", "--autostash", onto)
	return r.rebaseOutcome(ctx, err)
}

// ContinueRebase continues an in-progress rebase without opening an editor
func (r *RealRunner) ContinueRebase(ctx context.Context) RebaseOutcome {
	_, err := r.cmd.RunWithEnv(ctx, []string{"GIT_EDITOR=true"}, "-c", "core.editor=true", "rebase", "--continue")
	return r.rebaseOutcome(ctx, err)
}

// AbortRebase aborts an in-progress rebase
func (r *RealRunner) AbortRebase(ctx context.Context) error {
	if _, err := r.cmd.Run(ctx, "rebase", "--abort"); err != nil {
		return vcsError("rebase --abort", "", err)
	}
	return nil
}

// IsRebaseInProgress checks if a rebase is currently in progress
func (r *RealRunner) IsRebaseInProgress(_ context.Context) bool {
	return rebaseDirExists(r.gitDir)
}

// rebaseDirExists checks for .git/rebase-merge or .git/rebase-apply.
// This is more reliable than checking REBASE_HEAD which can persist after rebase.
func rebaseDirExists(gitDir string) bool {
	for _, dir := range []string{"rebase-merge", "rebase-apply"} {
		if _, err := os.Stat(filepath.Join(gitDir, dir)); err == nil {
			return true
		}
	}
	return false
}

func (r *RealRunner) rebaseOutcome(ctx context.Context, err error) RebaseOutcome {
	if err == nil {
		return RebaseOK
	}
	code := -1
	detail := err.Error()
	var cmdErr *gserrors.GitCommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode()
		detail = strings.TrimSpace(cmdErr.Stdout + "\n" + cmdErr.Stderr)
	}
	if r.IsRebaseInProgress(ctx) {
		return RebaseOutcome{Status: RebaseConflict, Code: code, Detail: detail}
	}
	return RebaseOutcome{Status: RebaseFatal, Code: code, Detail: detail}
}

// Err converts a non-clean outcome into an error for branch
func (o RebaseOutcome) Err(branch string) error {
	switch o.Status {
	case RebaseDone:
		return nil
	case RebaseConflict:
		return gserrors.NewRebaseConflictError(branch, firstLine(o.Detail))
	default:
		return gserrors.NewVersionControlError("rebase", branch, o.Code, o.Detail)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// PushStatus is the result kind of a push
type PushStatus int

const (
	// PushDone indicates the remote accepted the push
	PushDone PushStatus = iota
	// PushRejected indicates the remote tip moved since it was last fetched
	PushRejected
	// PushFatal indicates any other push failure
	PushFatal
)

// PushOutcome describes what happened to a push
type PushOutcome struct {
	Status PushStatus
	Code   int
	Detail string
}

// Err converts a failed push into an error for branch
func (o PushOutcome) Err(branch string) error {
	switch o.Status {
	case PushDone:
		return nil
	case PushRejected:
		return fmt.Errorf("force-with-lease push of %s was rejected because the remote branch changed; fetch and inspect it before pushing again: %w", branch, gserrors.ErrPushRejected)
	default:
		return gserrors.NewVersionControlError("push", branch, o.Code, o.Detail)
	}
}
