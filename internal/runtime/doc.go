// Package runtime provides the execution context for gstack commands.
//
// A Context bundles the persistent store, the git and GitHub collaborators,
// the logger and user settings for one invocation, so actions take a single
// parameter and tests can swap in fakes.
package runtime
