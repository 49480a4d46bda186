package runtime

import (
	"context"
	"fmt"
	"os"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/git"
	"gstack.dev/gstack/internal/github"
	"gstack.dev/gstack/internal/output"
)

// Context provides access to the store, collaborators and output for commands
type Context struct {
	Context  context.Context
	Store    *config.Store
	Git      git.Runner
	GitHub   github.Client
	Splog    *output.Splog
	Settings *config.Settings
}

// NewContext assembles a context from already constructed parts.
// Tests use it with fakes; a nil splog writes to stdout.
func NewContext(ctx context.Context, store *config.Store, gitRunner git.Runner, gh github.Client, splog *output.Splog) *Context {
	if splog == nil {
		splog = output.NewSplog()
	}
	return &Context{
		Context:  ctx,
		Store:    store,
		Git:      gitRunner,
		GitHub:   gh,
		Splog:    splog,
		Settings: config.DefaultSettings(),
	}
}

// GetContext discovers the repository containing the working directory and
// wires the real git and GitHub collaborators to it.
func GetContext(ctx context.Context, settings *config.Settings) (*Context, error) {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	runner, err := git.NewRealRunner(ctx, cwd, settings.Remote, git.WithIgnoredPaths(config.ConfigFileName))
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	splog, err := output.NewSplogWithConfig(os.Stdout, output.LogConfig{
		File:       settings.Log.File,
		MaxSize:    settings.Log.MaxSize,
		MaxBackups: settings.Log.MaxBackups,
		MaxAge:     settings.Log.MaxAge,
		Debug:      settings.Debug,
	})
	if err != nil {
		// A broken log directory should not block the command
		splog = output.NewSplog()
	}

	return &Context{
		Context:  ctx,
		Store:    config.NewStore(runner.RepoRoot(), runner.GitDir()),
		Git:      runner,
		GitHub:   newGitHubClient(ctx, runner, settings),
		Splog:    splog,
		Settings: settings,
	}, nil
}

// newGitHubClient builds the review client from the configured remote.
// Without a remote the client reports itself unauthenticated.
func newGitHubClient(ctx context.Context, runner git.Runner, settings *config.Settings) github.Client {
	remoteURL, err := runner.RemoteURL(ctx)
	if err != nil {
		remoteURL = ""
	}
	return github.NewClient(ctx, remoteURL, settings.Review.CacheTTL)
}

// Close releases the log file
func (c *Context) Close() error {
	if c.Splog != nil {
		return c.Splog.Close()
	}
	return nil
}
