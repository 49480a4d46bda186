package testhelpers

import (
	"testing"
	"time"

	githubpkg "gstack.dev/gstack/internal/github"
)

// NewMockRealClient returns a RealClient talking to a fresh mock server.
// The cache TTL is kept short so tests observe server state changes.
func NewMockRealClient(t *testing.T, config *MockGitHubServerConfig) *githubpkg.RealClient {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	client, owner, repo := NewMockGitHubClient(t, config)
	return githubpkg.NewRealClient(client, owner, repo, time.Minute)
}
