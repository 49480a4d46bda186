package testhelpers

import (
	"fmt"
	"time"

	"github.com/google/go-github/v62/github"
)

// SamplePRData provides common PR data for testing
type SamplePRData struct {
	Number  int
	Title   string
	Body    string
	Head    string
	Base    string
	HTMLURL string
	Draft   bool
	State   string
	Merged  bool
}

// NewSamplePullRequest creates a github.PullRequest from sample data
func NewSamplePullRequest(data SamplePRData) *github.PullRequest {
	pr := &github.PullRequest{
		Number:  github.Int(data.Number),
		Title:   github.String(data.Title),
		Body:    github.String(data.Body),
		Head:    &github.PullRequestBranch{Ref: github.String(data.Head)},
		Base:    &github.PullRequestBranch{Ref: github.String(data.Base)},
		HTMLURL: github.String(data.HTMLURL),
		Draft:   github.Bool(data.Draft),
		State:   github.String(data.State),
	}
	if data.Merged {
		pr.Merged = github.Bool(true)
		pr.MergedAt = &github.Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	}
	return pr
}

// DefaultPRData returns a default PR data structure for testing
func DefaultPRData() SamplePRData {
	return PRDataFor(123, "feature-branch", "main")
}

// PRDataFor returns open PR data for head targeting base
func PRDataFor(number int, head, base string) SamplePRData {
	return SamplePRData{
		Number:  number,
		Title:   "Test Pull Request",
		Body:    "This is a test pull request",
		Head:    head,
		Base:    base,
		HTMLURL: fmt.Sprintf("https://github.com/owner/repo/pull/%d", number),
		State:   "open",
	}
}

// MergedPRData returns PR data for a merged PR
func MergedPRData() SamplePRData {
	data := DefaultPRData()
	data.State = "closed"
	data.Merged = true
	return data
}

// ClosedPRData returns PR data for a PR closed without merging
func ClosedPRData() SamplePRData {
	data := DefaultPRData()
	data.State = "closed"
	return data
}
