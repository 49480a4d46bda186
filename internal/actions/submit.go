package actions

import (
	"fmt"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/engine"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/internal/github"
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// SubmitOptions contains options for the submit command
type SubmitOptions struct {
	// Branches to submit; empty means the current stack and its descendants
	Branches []string
	// Restack rebases the branches before pushing, resumable like sync
	Restack bool
	// Draft opens new pull requests as drafts
	Draft bool
}

// PushOptions contains options for the push command
type PushOptions struct {
	// BranchName defaults to the current branch
	BranchName string
	Draft      bool
}

// PushAction pushes a single branch and creates or retargets its pull request
func PushAction(ctx *runtime.Context, opts PushOptions) (*SubmitResult, error) {
	branch, err := resolveBranch(ctx, opts.BranchName)
	if err != nil {
		return nil, err
	}
	return SubmitAction(ctx, SubmitOptions{Branches: []string{branch}, Draft: opts.Draft})
}

// SubmitAction pushes branches parents first and makes sure each has a pull
// request targeting its parent. Failures of single branches do not stop the
// run; they are returned together as a SubmitError.
func SubmitAction(ctx *runtime.Context, opts SubmitOptions) (*SubmitResult, error) {
	if err := ensureNoPendingOperation(ctx); err != nil {
		return nil, err
	}
	if err := ensureCleanWorkingTree(ctx); err != nil {
		return nil, err
	}
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return nil, err
	}
	if ctx.GitHub == nil || !ctx.GitHub.IsAuthenticated(ctx.Context) {
		return nil, errors.ErrReviewAuthRequired
	}

	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("failed to get current branch: %w", err)
	}

	set := opts.Branches
	if len(set) == 0 {
		if set, err = stackSet(cfg, current); err != nil {
			return nil, err
		}
	}
	for _, branch := range set {
		if cfg.IsTrunk(branch) {
			return nil, fmt.Errorf("cannot submit %s: %w", branch, errors.ErrTrunkOperation)
		}
		if !cfg.IsTracked(branch) {
			return nil, errors.NewBranchNotFoundError(branch)
		}
	}
	if len(set) == 0 {
		ctx.Splog.Info("Nothing to submit.")
		return &SubmitResult{}, nil
	}

	if !opts.Restack {
		return submitBranches(ctx, cfg.TopologicalSort(set), current, opts.Draft)
	}

	sync := &SyncResult{}
	sync.Merged, sync.Reparented = detectMerged(ctx, cfg, set)
	if len(sync.Reparented) > 0 {
		if err := ctx.Store.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}
	for _, branch := range sync.Merged {
		ctx.Splog.Info("Skipping %s: its pull request is merged.", output.ColorBranchName(branch, false))
	}

	state, err := startOperation(ctx, cfg, config.CommandSubmit, without(set, sync.Merged), func(state *config.OperationState) {
		state.Draft = opts.Draft
	})
	if err != nil {
		return nil, err
	}
	if state == nil {
		ctx.Splog.Info("Nothing to submit.")
		return &SubmitResult{Sync: sync}, nil
	}
	if err := runQueue(ctx, cfg, state, sync); err != nil {
		reportInterruption(ctx, sync, err)
		return &SubmitResult{Sync: sync}, err
	}

	result, err := submitBranches(ctx, state.Queue, state.OriginalHead, opts.Draft)
	result.Sync = sync
	return result, err
}

// submitBranches runs the push and pull request phase over branches, which
// must already be in stack order. It always returns a result.
func submitBranches(ctx *runtime.Context, branches []string, current string, draft bool) (*SubmitResult, error) {
	result := &SubmitResult{}
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return result, err
	}

	var failures []error
	var affected []string
	for _, branch := range branches {
		if !cfg.IsTracked(branch) {
			continue
		}
		parent := cfg.GetParent(branch)

		setUpstream := !ctx.Git.HasUpstream(ctx.Context, branch)
		if outcome := ctx.Git.Push(ctx.Context, branch, setUpstream); outcome.Status != git.PushDone {
			ctx.Splog.Warn("Failed to push %s.", branch)
			failures = append(failures, outcome.Err(branch))
			continue
		}
		result.Pushed = append(result.Pushed, branch)

		info, err := ctx.GitHub.GetInfo(ctx.Context, branch)
		if err != nil {
			failures = append(failures, err)
			continue
		}

		switch {
		case info != nil && info.IsMerged():
			ctx.Splog.Warn("Pull request for %s is already merged, skipping.", branch)
			result.Skipped = append(result.Skipped, branch)
			continue
		case info == nil || !info.IsOpen():
			info, err = createPullRequest(ctx, branch, parent, draft)
			if err != nil {
				failures = append(failures, err)
				continue
			}
			ctx.Splog.Info("Created pull request for %s: %s", output.ColorBranchName(branch, false), info.URL)
			result.Created = append(result.Created, branch)
		case info.Base != parent:
			if err := ctx.GitHub.UpdateBase(ctx.Context, branch, parent); err != nil {
				failures = append(failures, err)
				continue
			}
			ctx.Splog.Info("Retargeted pull request for %s onto %s.", output.ColorBranchName(branch, false), parent)
			result.Updated = append(result.Updated, branch)
		default:
			ctx.Splog.Debug("Pull request for %s is up to date.", branch)
		}

		if err := cfg.SetReviewURL(branch, info.URL); err != nil {
			failures = append(failures, err)
			continue
		}
		affected = append(affected, branch)
	}

	if err := ctx.Store.SaveConfig(cfg); err != nil {
		return result, err
	}

	postStackDiagram(ctx, cfg, branches, affected, current)

	ctx.Splog.Info("Pushed %d branch(es), created %d pull request(s), updated %d pull request(s).",
		len(result.Pushed), len(result.Created), len(result.Updated))
	if len(failures) > 0 {
		return result, &errors.SubmitError{Failures: failures}
	}
	return result, nil
}

func createPullRequest(ctx *runtime.Context, branch, parent string, draft bool) (*github.PullRequestInfo, error) {
	title, err := ctx.Git.CommitSubject(ctx.Context, branch)
	if err != nil || title == "" {
		title = branch
	}
	return ctx.GitHub.Create(ctx.Context, github.CreatePROptions{
		Title: title,
		Body:  pullRequestBody(parent),
		Head:  branch,
		Base:  parent,
		Draft: draft,
	})
}

// postStackDiagram upserts one diagram of the stacks around branches on every
// affected pull request. Failures only warn.
func postStackDiagram(ctx *runtime.Context, cfg *engine.StackConfig, branches, affected []string, current string) {
	if len(affected) == 0 {
		return
	}
	body := stackDiagram(cfg, diagramBranches(cfg, branches), current)
	for _, branch := range affected {
		if err := ctx.GitHub.UpsertComment(ctx.Context, branch, StackCommentMarker, body); err != nil {
			ctx.Splog.Warn("Failed to update stack diagram on %s: %v", branch, err)
		}
	}
}
