package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v62/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server.
// Fields may be inspected after requests complete; use Lock when a test
// reads them while the server is still handling calls.
type MockGitHubServerConfig struct {
	sync.Mutex

	// PRs maps head branch names to their pull request
	PRs map[string]*github.PullRequest
	// Comments maps pull request numbers to their issue comments
	Comments map[int][]*github.IssueComment
	// CreatedPRs stores PRs that were created
	CreatedPRs []*github.PullRequest
	// UpdatedPRs stores the latest edit per PR number
	UpdatedPRs map[int]*github.PullRequest
	// FailCreate lists head branches whose creation returns 422
	FailCreate map[string]bool
	// Unauthenticated makes every request return 401
	Unauthenticated bool
	// CommentsPerPage caps the comment page size the server returns
	CommentsPerPage int

	CreatedComments int
	EditedComments  int

	// Owner and Repo for the mock server
	Owner string
	Repo  string

	nextCommentID int64
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		PRs:        make(map[string]*github.PullRequest),
		Comments:   make(map[int][]*github.IssueComment),
		UpdatedPRs: make(map[int]*github.PullRequest),
		FailCreate: make(map[string]bool),
		Owner:      "owner",
		Repo:       "repo",
	}
}

// AddPR registers an existing pull request on the server
func (c *MockGitHubServerConfig) AddPR(data SamplePRData) *github.PullRequest {
	c.Lock()
	defer c.Unlock()
	pr := NewSamplePullRequest(data)
	c.PRs[data.Head] = pr
	return pr
}

// AddComment registers an existing comment on pull request number
func (c *MockGitHubServerConfig) AddComment(number int, body string) *github.IssueComment {
	c.Lock()
	defer c.Unlock()
	return c.addCommentLocked(number, body)
}

// CommentBodies returns the comment bodies on pull request number
func (c *MockGitHubServerConfig) CommentBodies(number int) []string {
	c.Lock()
	defer c.Unlock()
	bodies := make([]string, 0, len(c.Comments[number]))
	for _, comment := range c.Comments[number] {
		bodies = append(bodies, comment.GetBody())
	}
	return bodies
}

func (c *MockGitHubServerConfig) addCommentLocked(number int, body string) *github.IssueComment {
	c.nextCommentID++
	comment := &github.IssueComment{
		ID:   github.Int64(c.nextCommentID),
		Body: github.String(body),
	}
	c.Comments[number] = append(c.Comments[number], comment)
	return comment
}

func (c *MockGitHubServerConfig) nextPRNumber() int {
	highest := 0
	for _, pr := range c.PRs {
		highest = max(highest, pr.GetNumber())
	}
	return highest + 1
}

func (c *MockGitHubServerConfig) prByNumber(number int) *github.PullRequest {
	for _, pr := range c.PRs {
		if pr.GetNumber() == number {
			return pr
		}
	}
	return nil
}

// NewMockGitHubServer creates an httptest server that mocks GitHub API endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	repoPath := "/repos/" + config.Owner + "/" + config.Repo

	mux.HandleFunc("GET /user", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, &github.User{Login: github.String(config.Owner)})
	})

	mux.HandleFunc("GET "+repoPath+"/pulls", func(w http.ResponseWriter, r *http.Request) {
		config.Lock()
		defer config.Unlock()

		head := r.URL.Query().Get("head")
		branch := head
		if idx := strings.Index(head, ":"); idx >= 0 {
			branch = head[idx+1:]
		}
		result := []*github.PullRequest{}
		if pr, ok := config.PRs[branch]; ok {
			result = append(result, pr)
		}
		writeJSON(w, http.StatusOK, result)
	})

	mux.HandleFunc("POST "+repoPath+"/pulls", func(w http.ResponseWriter, r *http.Request) {
		var req github.NewPullRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.Lock()
		defer config.Unlock()

		head := req.GetHead()
		if config.FailCreate[head] {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Validation Failed"})
			return
		}

		number := config.nextPRNumber()
		pr := NewSamplePullRequest(SamplePRData{
			Number:  number,
			Title:   req.GetTitle(),
			Body:    req.GetBody(),
			Head:    head,
			Base:    req.GetBase(),
			HTMLURL: fmt.Sprintf("https://github.com/%s/%s/pull/%d", config.Owner, config.Repo, number),
			Draft:   req.GetDraft(),
			State:   "open",
		})
		config.PRs[head] = pr
		config.CreatedPRs = append(config.CreatedPRs, pr)
		writeJSON(w, http.StatusCreated, pr)
	})

	mux.HandleFunc("GET "+repoPath+"/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		number, ok := pathNumber(w, r)
		if !ok {
			return
		}
		config.Lock()
		defer config.Unlock()
		pr := config.prByNumber(number)
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PATCH "+repoPath+"/pulls/{number}", func(w http.ResponseWriter, r *http.Request) {
		number, ok := pathNumber(w, r)
		if !ok {
			return
		}
		// The API takes flat fields like {"base": "branch-name"}
		var update struct {
			Title *string `json:"title,omitempty"`
			Body  *string `json:"body,omitempty"`
			Base  *string `json:"base,omitempty"`
			State *string `json:"state,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		config.Lock()
		defer config.Unlock()
		pr := config.prByNumber(number)
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		if update.Title != nil {
			pr.Title = update.Title
		}
		if update.Body != nil {
			pr.Body = update.Body
		}
		if update.State != nil {
			pr.State = update.State
		}
		if update.Base != nil {
			pr.Base = &github.PullRequestBranch{Ref: github.String(*update.Base)}
		}
		config.UpdatedPRs[number] = pr
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("GET "+repoPath+"/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		number, ok := pathNumber(w, r)
		if !ok {
			return
		}
		config.Lock()
		defer config.Unlock()

		comments := config.Comments[number]
		perPage := config.CommentsPerPage
		if perPage <= 0 {
			perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
		}
		if perPage <= 0 {
			perPage = 30
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page <= 0 {
			page = 1
		}

		start := min((page-1)*perPage, len(comments))
		end := min(start+perPage, len(comments))
		if end < len(comments) {
			next := *r.URL
			query := next.Query()
			query.Set("page", strconv.Itoa(page+1))
			next.RawQuery = query.Encode()
			w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, absoluteURL(r, &next)))
		}
		writeJSON(w, http.StatusOK, comments[start:end])
	})

	mux.HandleFunc("POST "+repoPath+"/issues/{number}/comments", func(w http.ResponseWriter, r *http.Request) {
		number, ok := pathNumber(w, r)
		if !ok {
			return
		}
		var req github.IssueComment
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		config.Lock()
		defer config.Unlock()
		comment := config.addCommentLocked(number, req.GetBody())
		config.CreatedComments++
		writeJSON(w, http.StatusCreated, comment)
	})

	mux.HandleFunc("PATCH "+repoPath+"/issues/comments/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid comment id", http.StatusBadRequest)
			return
		}
		var req github.IssueComment
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		config.Lock()
		defer config.Unlock()
		for _, comments := range config.Comments {
			for _, comment := range comments {
				if comment.GetID() == id {
					comment.Body = req.Body
					config.EditedComments++
					writeJSON(w, http.StatusOK, comment)
					return
				}
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		config.Lock()
		unauthenticated := config.Unauthenticated
		config.Unlock()
		if unauthenticated {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		mux.ServeHTTP(w, r)
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient creates a go-github client pointed at a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) (*github.Client, string, string) {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)

	client := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("failed to parse mock server URL: %v", err)
	}
	client.BaseURL = baseURL
	client.UploadURL = baseURL

	return client, config.Owner, config.Repo
}

func pathNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(r.PathValue("number"))
	if err != nil || number <= 0 {
		http.Error(w, "invalid number", http.StatusBadRequest)
		return 0, false
	}
	return number, true
}

func absoluteURL(r *http.Request, u *url.URL) string {
	return "http://" + r.Host + u.RequestURI()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
