// Package errors provides sentinel errors and custom error types for the gstack application.
// Use errors.Is() and errors.As() to check for specific error types.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common conditions
var (
	// ErrDirtyWorkdir indicates that the working tree has uncommitted changes
	ErrDirtyWorkdir = errors.New("working directory is not clean; commit or stash your changes first")

	// ErrPendingOperationExists indicates that an interrupted operation must be continued or aborted first
	ErrPendingOperationExists = errors.New("an operation is already in progress")

	// ErrNoPendingOperation indicates that there is nothing to continue or abort
	ErrNoPendingOperation = errors.New("no pending operation to continue or abort")

	// ErrRebaseConflict indicates that a rebase operation encountered a conflict
	ErrRebaseConflict = errors.New("rebase conflict")

	// ErrBranchNotFound indicates that a branch is not tracked
	ErrBranchNotFound = errors.New("branch not found")

	// ErrBranchAlreadyExists indicates that a branch name is already taken
	ErrBranchAlreadyExists = errors.New("branch already exists")

	// ErrNotInitialized indicates that gstack has not been initialized in this repository
	ErrNotInitialized = errors.New("gstack is not initialized; run 'gstack init' first")

	// ErrAlreadyInitialized indicates that init was run twice without --force
	ErrAlreadyInitialized = errors.New("gstack is already initialized; use --force to reinitialize")

	// ErrConfigCorrupted indicates that a persisted file exists but cannot be used
	ErrConfigCorrupted = errors.New("configuration corrupted")

	// ErrVersionControlFailed indicates that a git command failed for a reason other than a conflict
	ErrVersionControlFailed = errors.New("version control command failed")

	// ErrReviewAuthRequired indicates that the review service is not authenticated
	ErrReviewAuthRequired = errors.New("GitHub is not authenticated; set GITHUB_TOKEN or run 'gh auth login'")

	// ErrReviewOperationFailed indicates that a pull request operation failed
	ErrReviewOperationFailed = errors.New("review operation failed")

	// ErrTrunkOperation indicates an invalid operation on the trunk branch
	ErrTrunkOperation = errors.New("invalid operation on trunk branch")

	// ErrBranchNotMerged indicates that a branch still has commits its parent does not contain
	ErrBranchNotMerged = errors.New("branch is not merged into its parent")

	// ErrPushRejected indicates that the remote tip moved since it was last fetched
	ErrPushRejected = errors.New("push rejected")

	// ErrInvalidParent indicates that a reparent would create a cycle
	ErrInvalidParent = errors.New("invalid parent")

	// ErrNotOnBranch indicates that HEAD is not on a branch
	ErrNotOnBranch = errors.New("not on a branch")

	// ErrInvalidBranchName indicates a name git would refuse as a branch
	ErrInvalidBranchName = errors.New("invalid branch name")
)

// BranchNotFoundError represents an error when a branch is not tracked
type BranchNotFoundError struct {
	BranchName string
}

func (e *BranchNotFoundError) Error() string {
	return fmt.Sprintf("branch '%s' is not tracked by gstack", e.BranchName)
}

// Is returns true if the target error is ErrBranchNotFound
func (e *BranchNotFoundError) Is(target error) bool {
	return target == ErrBranchNotFound
}

// NewBranchNotFoundError creates a new BranchNotFoundError
func NewBranchNotFoundError(branchName string) *BranchNotFoundError {
	return &BranchNotFoundError{BranchName: branchName}
}

// BranchAlreadyExistsError represents an error when a branch name is taken
type BranchAlreadyExistsError struct {
	BranchName string
}

func (e *BranchAlreadyExistsError) Error() string {
	return fmt.Sprintf("branch '%s' already exists", e.BranchName)
}

// Is returns true if the target error is ErrBranchAlreadyExists
func (e *BranchAlreadyExistsError) Is(target error) bool {
	return target == ErrBranchAlreadyExists
}

// NewBranchAlreadyExistsError creates a new BranchAlreadyExistsError
func NewBranchAlreadyExistsError(branchName string) *BranchAlreadyExistsError {
	return &BranchAlreadyExistsError{BranchName: branchName}
}

// RebaseConflictError represents an error when a rebase encounters a conflict
type RebaseConflictError struct {
	BranchName string
	Message    string
}

func (e *RebaseConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("rebase conflict on branch %s: %s", e.BranchName, e.Message)
	}
	return fmt.Sprintf("rebase conflict on branch %s", e.BranchName)
}

// Is returns true if the target error is ErrRebaseConflict
func (e *RebaseConflictError) Is(target error) bool {
	return target == ErrRebaseConflict
}

// NewRebaseConflictError creates a new RebaseConflictError
func NewRebaseConflictError(branchName string, message string) *RebaseConflictError {
	return &RebaseConflictError{
		BranchName: branchName,
		Message:    message,
	}
}

// PendingOperationError reports the command that left an operation record behind
type PendingOperationError struct {
	Command string
}

func (e *PendingOperationError) Error() string {
	return fmt.Sprintf("a '%s' operation is already in progress; run 'gstack continue' to resume or 'gstack abort' to cancel", e.Command)
}

// Is returns true if the target error is ErrPendingOperationExists
func (e *PendingOperationError) Is(target error) bool {
	return target == ErrPendingOperationExists
}

// NewPendingOperationError creates a new PendingOperationError
func NewPendingOperationError(command string) *PendingOperationError {
	return &PendingOperationError{Command: command}
}

// ConfigCorruptedError represents a persisted file that exists but cannot be parsed or validated
type ConfigCorruptedError struct {
	Path string
	Err  error
}

func (e *ConfigCorruptedError) Error() string {
	return fmt.Sprintf("%s is corrupted: %v", e.Path, e.Err)
}

// Is returns true if the target error is ErrConfigCorrupted
func (e *ConfigCorruptedError) Is(target error) bool {
	return target == ErrConfigCorrupted
}

func (e *ConfigCorruptedError) Unwrap() error {
	return e.Err
}

// NewConfigCorruptedError creates a new ConfigCorruptedError
func NewConfigCorruptedError(path string, err error) *ConfigCorruptedError {
	return &ConfigCorruptedError{Path: path, Err: err}
}

// VersionControlError represents a failed git step that is not a conflict.
// Code is the exit code of the git process, or -1 if it never ran.
type VersionControlError struct {
	Op         string
	BranchName string
	Code       int
	Detail     string
}

func (e *VersionControlError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Op)
	if e.BranchName != "" {
		msg += fmt.Sprintf(" on branch %s", e.BranchName)
	}
	msg += fmt.Sprintf(" (exit code %d)", e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Is returns true if the target error is ErrVersionControlFailed
func (e *VersionControlError) Is(target error) bool {
	return target == ErrVersionControlFailed
}

// NewVersionControlError creates a new VersionControlError
func NewVersionControlError(op, branchName string, code int, detail string) *VersionControlError {
	return &VersionControlError{Op: op, BranchName: branchName, Code: code, Detail: detail}
}

// ReviewOperationError represents a failed pull request operation for one branch
type ReviewOperationError struct {
	BranchName string
	Cause      error
}

func (e *ReviewOperationError) Error() string {
	return fmt.Sprintf("pull request operation for %s failed: %v", e.BranchName, e.Cause)
}

// Is returns true if the target error is ErrReviewOperationFailed
func (e *ReviewOperationError) Is(target error) bool {
	return target == ErrReviewOperationFailed
}

func (e *ReviewOperationError) Unwrap() error {
	return e.Cause
}

// NewReviewOperationError creates a new ReviewOperationError
func NewReviewOperationError(branchName string, cause error) *ReviewOperationError {
	return &ReviewOperationError{BranchName: branchName, Cause: cause}
}

// SubmitError collects the per-branch failures of a submit run
type SubmitError struct {
	Failures []error
}

func (e *SubmitError) Error() string {
	lines := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		lines = append(lines, "  "+f.Error())
	}
	return fmt.Sprintf("submit finished with %d failure(s):\n%s", len(e.Failures), strings.Join(lines, "\n"))
}

func (e *SubmitError) Unwrap() []error {
	return e.Failures
}

// GitCommandError represents an error from a git command execution
type GitCommandError struct {
	Command string
	Args    []string
	Stdout  string
	Stderr  string
	Err     error
}

func (e *GitCommandError) Error() string {
	msg := fmt.Sprintf("git command failed: %s", e.Command)
	if len(e.Args) > 0 {
		msg += fmt.Sprintf(" %v", e.Args)
	}
	if e.Stderr != "" {
		msg += fmt.Sprintf("\nstderr: %s", e.Stderr)
	}
	if e.Stdout != "" {
		msg += fmt.Sprintf("\nstdout: %s", e.Stdout)
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n%v", e.Err)
	}
	return msg
}

func (e *GitCommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit code of the failed process, or -1 if it did not run
func (e *GitCommandError) ExitCode() int {
	var exitErr interface{ ExitCode() int }
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// NewGitCommandError creates a new GitCommandError
func NewGitCommandError(command string, args []string, stdout, stderr string, err error) *GitCommandError {
	return &GitCommandError{
		Command: command,
		Args:    args,
		Stdout:  stdout,
		Stderr:  stderr,
		Err:     err,
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
