package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	gserrors "gstack.dev/gstack/internal/errors"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseGitHubRemoteURL parses a git remote URL and extracts hostname, owner, and repo
// Supports both github.com and GitHub Enterprise URLs
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
func ParseGitHubRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, ".git")
	remoteURL = strings.TrimSuffix(remoteURL, "/")

	var hostname, path string
	switch {
	case strings.Contains(remoteURL, "://"):
		u, err := url.Parse(remoteURL)
		if err != nil {
			return nil, fmt.Errorf("invalid remote URL: %w", err)
		}
		hostname = u.Hostname()
		path = strings.TrimPrefix(u.Path, "/")
	case strings.Contains(remoteURL, "@"):
		// SSH format: git@hostname:owner/repo
		hostAndPath := strings.SplitN(remoteURL, "@", 2)[1]
		parts := strings.SplitN(hostAndPath, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid SSH remote URL: missing path")
		}
		hostname, path = parts[0], parts[1]
	default:
		return nil, fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	segments := strings.Split(path, "/")
	if len(segments) < 2 {
		return nil, fmt.Errorf("invalid remote URL: path must be owner/repo")
	}
	owner := segments[len(segments)-2]
	repo := segments[len(segments)-1]
	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL")
	}

	return &RepoInfo{Hostname: hostname, Owner: owner, Repo: repo}, nil
}

// getGitHubToken gets GitHub token from environment or gh CLI
func getGitHubToken(ctx context.Context) (string, error) {
	for _, env := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := os.Getenv(env); token != "" {
			return token, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	output, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token: %w", err)
	}

	token := strings.TrimSpace(string(output))
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}
	return token, nil
}

// createGitHubClient creates a GitHub client configured for the given hostname
// Supports both github.com and GitHub Enterprise instances
func createGitHubClient(ctx context.Context, hostname, token string) (*github.Client, error) {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	client := github.NewClient(tc)

	if hostname != "github.com" {
		// REST API: https://hostname/api/v3/
		// Upload API: https://hostname/api/uploads/
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
	}

	return client, nil
}

// NewClient builds a client for the repository behind remoteURL. When no token
// is available or the remote is not on GitHub, it returns a client that reports
// itself unauthenticated and fails every call with ErrReviewAuthRequired.
func NewClient(ctx context.Context, remoteURL string, cacheTTL time.Duration) Client {
	info, err := ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return &unavailableClient{reason: err}
	}
	token, err := getGitHubToken(ctx)
	if err != nil {
		return &unavailableClient{reason: err}
	}
	client, err := createGitHubClient(ctx, info.Hostname, token)
	if err != nil {
		return &unavailableClient{reason: err}
	}
	return NewRealClient(client, info.Owner, info.Repo, cacheTTL)
}

// unavailableClient stands in when GitHub cannot be reached at all
type unavailableClient struct {
	reason error
}

func (c *unavailableClient) err() error {
	return fmt.Errorf("%w (%v)", gserrors.ErrReviewAuthRequired, c.reason)
}

func (c *unavailableClient) IsAuthenticated(context.Context) bool { return false }

func (c *unavailableClient) GetInfo(context.Context, string) (*PullRequestInfo, error) {
	return nil, c.err()
}

func (c *unavailableClient) Create(context.Context, CreatePROptions) (*PullRequestInfo, error) {
	return nil, c.err()
}

func (c *unavailableClient) UpdateBase(context.Context, string, string) error { return c.err() }

func (c *unavailableClient) IsMerged(context.Context, string) (bool, error) { return false, c.err() }

func (c *unavailableClient) UpsertComment(context.Context, string, string, string) error {
	return c.err()
}

// toPullRequestInfo converts a github.PullRequest to PullRequestInfo
func toPullRequestInfo(pr *github.PullRequest) *PullRequestInfo {
	if pr == nil {
		return nil
	}
	info := &PullRequestInfo{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
		Title:  pr.GetTitle(),
		Base:   pr.GetBase().GetRef(),
		Head:   pr.GetHead().GetRef(),
	}
	switch {
	case pr.GetMerged() || pr.MergedAt != nil:
		info.State = StateMerged
	case strings.EqualFold(pr.GetState(), "closed"):
		info.State = StateClosed
	default:
		info.State = StateOpen
	}
	return info
}

// isNotFound reports whether err is a 404 from the API
func isNotFound(err error) bool {
	var errResp *github.ErrorResponse
	return errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode == 404
}
