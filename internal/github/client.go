// Package github provides a client for interacting with the GitHub API.
package github

import (
	"context"
)

// Pull request states as reported by PullRequestInfo
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
	StateMerged = "MERGED"
)

// PullRequestInfo contains information about a pull request
// This is a simplified struct to avoid coupling to go-github library
type PullRequestInfo struct {
	Number int
	URL    string
	Title  string
	State  string // OPEN, CLOSED, MERGED
	Base   string
	Head   string
}

// IsOpen reports whether the pull request can still be updated
func (p *PullRequestInfo) IsOpen() bool {
	return p.State == StateOpen
}

// IsMerged reports whether the pull request was merged
func (p *PullRequestInfo) IsMerged() bool {
	return p.State == StateMerged
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client is an interface for GitHub API interactions.
// Lookups are by head branch; a branch without a pull request yields nil info.
type Client interface {
	// IsAuthenticated reports whether API calls can be made
	IsAuthenticated(ctx context.Context) bool

	// GetInfo returns the most recent pull request for branch, or nil
	GetInfo(ctx context.Context, branch string) (*PullRequestInfo, error)

	// Create opens a new pull request
	Create(ctx context.Context, opts CreatePROptions) (*PullRequestInfo, error)

	// UpdateBase retargets the pull request of branch onto base
	UpdateBase(ctx context.Context, branch, base string) error

	// IsMerged reports whether the pull request of branch was merged
	IsMerged(ctx context.Context, branch string) (bool, error)

	// UpsertComment edits the comment containing marker on the pull request
	// of branch, or adds one when none exists
	UpsertComment(ctx context.Context, branch, marker, body string) error
}
