// Package actions provides high-level business logic for CLI commands.
//
// Each action corresponds to a gstack command (init, create, sync, continue,
// abort, submit, push, delete, move, log) and orchestrates the stack model,
// the persistent store and the git and GitHub collaborators.
//
// Key patterns:
//   - Actions accept runtime.Context which provides Store, Git, GitHub and Splog
//   - Preconditions are checked before anything is written
//   - Multi-branch work runs from a persisted OperationState so an interrupted
//     run resumes with continue or is rolled back with abort
package actions
