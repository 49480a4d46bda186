package actions

import (
	"fmt"
	"slices"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/engine"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/runtime"
)

// loadInitializedConfig loads the stack config, failing when init never ran
func loadInitializedConfig(ctx *runtime.Context) (*engine.StackConfig, error) {
	cfg, err := ctx.Store.LoadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsInitialized() {
		return nil, errors.ErrNotInitialized
	}
	return cfg, nil
}

// ensureNoPendingOperation fails while an interrupted operation awaits continue or abort
func ensureNoPendingOperation(ctx *runtime.Context) error {
	state, err := ctx.Store.LoadState()
	if err != nil {
		return err
	}
	if state != nil {
		return errors.NewPendingOperationError(string(state.ActiveCommand))
	}
	return nil
}

// ensureCleanWorkingTree fails when the working tree has uncommitted changes
func ensureCleanWorkingTree(ctx *runtime.Context) error {
	clean, err := ctx.Git.IsWorkingTreeClean(ctx.Context)
	if err != nil {
		return err
	}
	if !clean {
		return errors.ErrDirtyWorkdir
	}
	return nil
}

// resolveBranch returns name, or the checked out branch when name is empty
func resolveBranch(ctx *runtime.Context, name string) (string, error) {
	if name != "" {
		return name, nil
	}
	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	return current, nil
}

// requireKnownBranch accepts the trunk or any tracked branch
func requireKnownBranch(cfg *engine.StackConfig, name string) error {
	if cfg.IsTrunk(name) || cfg.IsTracked(name) {
		return nil
	}
	return errors.NewBranchNotFoundError(name)
}

// stackSet returns the stack of branch plus its descendants, trunk excluded.
// For the trunk that is every tracked branch.
func stackSet(cfg *engine.StackConfig, branch string) ([]string, error) {
	if cfg.IsTrunk(branch) {
		return cfg.AllBranchNames(), nil
	}
	stack, err := cfg.GetStack(branch)
	if err != nil {
		return nil, err
	}
	descendants, err := cfg.GetDescendants(branch)
	if err != nil {
		return nil, err
	}

	set := make([]string, 0, len(stack)+len(descendants))
	for _, name := range stack {
		if !cfg.IsTrunk(name) {
			set = append(set, name)
		}
	}
	return append(set, descendants...), nil
}

// detectMerged asks the review service which branches of set are merged and
// moves every other branch of set onto its nearest unmerged ancestor. It
// returns the merged branches and the reparenting it applied to cfg. When the
// service is unavailable nothing is checked.
func detectMerged(ctx *runtime.Context, cfg *engine.StackConfig, set []string) ([]string, map[string]string) {
	reparented := map[string]string{}
	if ctx.GitHub == nil || !ctx.GitHub.IsAuthenticated(ctx.Context) {
		ctx.Splog.Debug("Skipping merge detection: GitHub is not available.")
		return nil, reparented
	}

	merged := map[string]bool{}
	for _, branch := range set {
		isMerged, err := ctx.GitHub.IsMerged(ctx.Context, branch)
		if err != nil {
			ctx.Splog.Debug("Could not check whether %s is merged: %v", branch, err)
			continue
		}
		if isMerged {
			merged[branch] = true
		}
	}
	if len(merged) == 0 {
		return nil, reparented
	}

	for _, branch := range cfg.TopologicalSort(set) {
		if merged[branch] {
			continue
		}
		parent := cfg.GetParent(branch)
		newParent := parent
		for merged[newParent] {
			newParent = cfg.GetParent(newParent)
		}
		if newParent == parent {
			continue
		}
		if err := cfg.SetParent(branch, newParent); err != nil {
			ctx.Splog.Debug("Could not reparent %s onto %s: %v", branch, newParent, err)
			continue
		}
		reparented[branch] = newParent
	}

	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, reparented
}

// without returns items minus every element of drop, keeping order
func without(items, drop []string) []string {
	if len(drop) == 0 {
		return items
	}
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if !slices.Contains(drop, item) {
			kept = append(kept, item)
		}
	}
	return kept
}

// startOperation builds the queue for set, persists a fresh record for command
// and returns it. An empty set persists nothing and returns nil. The record is
// created exclusively, so of two concurrent runs only one starts.
func startOperation(ctx *runtime.Context, cfg *engine.StackConfig, command config.Command, set []string, opts ...func(*config.OperationState)) (*config.OperationState, error) {
	queue := cfg.TopologicalSort(set)
	if len(queue) == 0 {
		return nil, nil
	}

	originalHead, err := ctx.Git.CurrentBranch(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	state := config.NewOperationState(command, queue, originalHead)
	for _, opt := range opts {
		opt(state)
	}
	if err := ctx.Store.CreateState(state); err != nil {
		return nil, err
	}
	ctx.Splog.Debug("Started %s operation %s over %v", command, state.ID, queue)
	return state, nil
}
