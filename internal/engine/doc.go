// Package engine manages the topology of stacked branches.
//
// It is the core of gstack, responsible for:
//   - Tracking parent-child relationships between branches
//   - Answering path and descendant queries over the branch forest
//   - Ordering a set of branches so ancestors come before descendants
//
// The engine is purely in-memory. Persistence lives in the config package and
// all git and GitHub interaction lives in the actions package.
package engine
