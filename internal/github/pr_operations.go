package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/patrickmn/go-cache"

	gserrors "gstack.dev/gstack/internal/errors"
)

// noPullRequest is cached for branches known to have no pull request
type noPullRequest struct{}

// RealClient implements Client using go-github. Lookups by branch are cached
// for the configured TTL so a single run does not repeat List calls.
type RealClient struct {
	client *github.Client
	owner  string
	repo   string
	cache  *cache.Cache
}

// NewRealClient wraps an already configured go-github client
func NewRealClient(client *github.Client, owner, repo string, cacheTTL time.Duration) *RealClient {
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &RealClient{
		client: client,
		owner:  owner,
		repo:   repo,
		cache:  cache.New(cacheTTL, 2*cacheTTL),
	}
}

// Owner returns the repository owner
func (c *RealClient) Owner() string { return c.owner }

// Repo returns the repository name
func (c *RealClient) Repo() string { return c.repo }

// IsAuthenticated reports whether the token is accepted by the API
func (c *RealClient) IsAuthenticated(ctx context.Context) bool {
	_, _, err := c.client.Users.Get(ctx, "")
	return err == nil
}

// GetInfo returns the most recent pull request whose head is branch
func (c *RealClient) GetInfo(ctx context.Context, branch string) (*PullRequestInfo, error) {
	if cached, ok := c.cache.Get(branch); ok {
		if info, ok := cached.(*PullRequestInfo); ok {
			return info, nil
		}
		return nil, nil
	}

	pr, err := c.getPullRequestByBranch(ctx, branch)
	if err != nil {
		return nil, gserrors.NewReviewOperationError(branch, err)
	}
	if pr == nil {
		c.cache.Set(branch, noPullRequest{}, cache.DefaultExpiration)
		return nil, nil
	}

	info := toPullRequestInfo(pr)
	c.cache.Set(branch, info, cache.DefaultExpiration)
	return info, nil
}

// Create opens a new pull request
func (c *RealClient) Create(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}
	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	created, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		c.cache.Delete(opts.Head)
		return nil, gserrors.NewReviewOperationError(opts.Head, fmt.Errorf("failed to create pull request: %w", err))
	}

	info := toPullRequestInfo(created)
	c.cache.Set(opts.Head, info, cache.DefaultExpiration)
	return info, nil
}

// UpdateBase retargets the open pull request of branch onto base
func (c *RealClient) UpdateBase(ctx context.Context, branch, base string) error {
	info, err := c.GetInfo(ctx, branch)
	if err != nil {
		return err
	}
	if info == nil {
		return gserrors.NewReviewOperationError(branch, fmt.Errorf("no pull request found"))
	}

	update := &github.PullRequest{
		Base: &github.PullRequestBranch{Ref: github.String(base)},
	}
	edited, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, info.Number, update)
	if err != nil {
		c.cache.Delete(branch)
		return gserrors.NewReviewOperationError(branch, fmt.Errorf("failed to update pull request #%d: %w", info.Number, err))
	}

	if refreshed := toPullRequestInfo(edited); refreshed != nil && refreshed.Number != 0 {
		c.cache.Set(branch, refreshed, cache.DefaultExpiration)
	} else {
		c.cache.Delete(branch)
	}
	return nil
}

// IsMerged reports whether the pull request of branch was merged
func (c *RealClient) IsMerged(ctx context.Context, branch string) (bool, error) {
	info, err := c.GetInfo(ctx, branch)
	if err != nil {
		return false, err
	}
	return info != nil && info.IsMerged(), nil
}

// UpsertComment keeps exactly one comment carrying marker on the pull request
// of branch. A branch without a pull request is left alone.
func (c *RealClient) UpsertComment(ctx context.Context, branch, marker, body string) error {
	info, err := c.GetInfo(ctx, branch)
	if err != nil {
		return err
	}
	if info == nil {
		return nil
	}

	existing, err := c.findComment(ctx, info.Number, marker)
	if err != nil {
		return gserrors.NewReviewOperationError(branch, err)
	}

	comment := &github.IssueComment{Body: github.String(body)}
	if existing != nil {
		if _, _, err := c.client.Issues.EditComment(ctx, c.owner, c.repo, existing.GetID(), comment); err != nil {
			return gserrors.NewReviewOperationError(branch, fmt.Errorf("failed to edit comment: %w", err))
		}
		return nil
	}

	if _, _, err := c.client.Issues.CreateComment(ctx, c.owner, c.repo, info.Number, comment); err != nil {
		return gserrors.NewReviewOperationError(branch, fmt.Errorf("failed to create comment: %w", err))
	}
	return nil
}

// findComment walks every page of issue comments looking for marker
func (c *RealClient) findComment(ctx context.Context, number int, marker string) (*github.IssueComment, error) {
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments: %w", err)
		}
		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), marker) {
				return comment, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return nil, nil
		}
		opts.Page = resp.NextPage
	}
}

// getPullRequestByBranch gets the newest pull request for a branch in any state
func (c *RealClient) getPullRequestByBranch(ctx context.Context, branch string) (*github.PullRequest, error) {
	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", c.owner, branch),
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list pull requests: %w", err)
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return prs[0], nil
}
