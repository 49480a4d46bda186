// Package git runs the version control steps of gstack.
//
// It wraps the git binary, with go-git for read-only ref lookups, behind the
// Runner interface:
//   - Branch management (checkout, create, delete, existence)
//   - Repo state queries (status, ancestry, commit subjects)
//   - Rebase steps reported as outcomes rather than errors
//   - Conflict-safe pushes with --force-with-lease
//
// This package should be the only place where direct git commands are executed.
package git
