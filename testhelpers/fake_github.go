package testhelpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gserrors "gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/github"
)

// FakeGitHub is an in-memory github.Client keyed by head branch
type FakeGitHub struct {
	mu sync.Mutex

	Authenticated bool
	PRs           map[string]*github.PullRequestInfo
	// Comments maps head branch to its comment bodies
	Comments map[string][]string
	// CreateErr and UpdateErr fail calls for the given branches
	CreateErr map[string]error
	UpdateErr map[string]error

	Created         []github.CreatePROptions
	BaseUpdates     []string
	CommentsCreated int
	CommentsEdited  int

	nextNumber int
}

var _ github.Client = (*FakeGitHub)(nil)

// NewFakeGitHub returns an authenticated client with no pull requests
func NewFakeGitHub() *FakeGitHub {
	return &FakeGitHub{
		Authenticated: true,
		PRs:           map[string]*github.PullRequestInfo{},
		Comments:      map[string][]string{},
		CreateErr:     map[string]error{},
		UpdateErr:     map[string]error{},
		nextNumber:    1,
	}
}

// AddPR registers an existing pull request for head
func (f *FakeGitHub) AddPR(head, base, state string) *github.PullRequestInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addLocked(head, base, state, "")
}

func (f *FakeGitHub) addLocked(head, base, state, title string) *github.PullRequestInfo {
	number := f.nextNumber
	f.nextNumber++
	info := &github.PullRequestInfo{
		Number: number,
		URL:    fmt.Sprintf("https://github.com/owner/repo/pull/%d", number),
		Title:  title,
		State:  state,
		Base:   base,
		Head:   head,
	}
	f.PRs[head] = info
	return info
}

// SetMerged marks the pull request of head as merged, creating one if needed
func (f *FakeGitHub) SetMerged(head string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if info, ok := f.PRs[head]; ok {
		info.State = github.StateMerged
		return
	}
	f.addLocked(head, "", github.StateMerged, "")
}

func (f *FakeGitHub) authErr() error {
	if f.Authenticated {
		return nil
	}
	return gserrors.ErrReviewAuthRequired
}

func (f *FakeGitHub) IsAuthenticated(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Authenticated
}

func (f *FakeGitHub) GetInfo(_ context.Context, branch string) (*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authErr(); err != nil {
		return nil, err
	}
	info, ok := f.PRs[branch]
	if !ok {
		return nil, nil
	}
	copied := *info
	return &copied, nil
}

func (f *FakeGitHub) Create(_ context.Context, opts github.CreatePROptions) (*github.PullRequestInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authErr(); err != nil {
		return nil, err
	}
	if err := f.CreateErr[opts.Head]; err != nil {
		return nil, gserrors.NewReviewOperationError(opts.Head, err)
	}
	f.Created = append(f.Created, opts)
	info := f.addLocked(opts.Head, opts.Base, github.StateOpen, opts.Title)
	copied := *info
	return &copied, nil
}

func (f *FakeGitHub) UpdateBase(_ context.Context, branch, base string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authErr(); err != nil {
		return err
	}
	if err := f.UpdateErr[branch]; err != nil {
		return gserrors.NewReviewOperationError(branch, err)
	}
	info, ok := f.PRs[branch]
	if !ok {
		return gserrors.NewReviewOperationError(branch, fmt.Errorf("no pull request found"))
	}
	info.Base = base
	f.BaseUpdates = append(f.BaseUpdates, branch+"->"+base)
	return nil
}

func (f *FakeGitHub) IsMerged(_ context.Context, branch string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authErr(); err != nil {
		return false, err
	}
	info, ok := f.PRs[branch]
	return ok && info.State == github.StateMerged, nil
}

func (f *FakeGitHub) UpsertComment(_ context.Context, branch, marker, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.authErr(); err != nil {
		return err
	}
	if _, ok := f.PRs[branch]; !ok {
		return nil
	}
	for i, existing := range f.Comments[branch] {
		if strings.Contains(existing, marker) {
			f.Comments[branch][i] = body
			f.CommentsEdited++
			return nil
		}
	}
	f.Comments[branch] = append(f.Comments[branch], body)
	f.CommentsCreated++
	return nil
}
