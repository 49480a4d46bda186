package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/config"
	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/runtime"
)

type runtimeKey struct{}

type optionsKey struct{}

// globalOptions are the persistent flags of the root command
type globalOptions struct {
	SettingsPath string
	Debug        bool
}

// WithRuntime returns a context that makes every command run against rc
// instead of discovering the repository from the working directory.
func WithRuntime(ctx context.Context, rc *runtime.Context) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rc)
}

func withOptions(ctx context.Context, opts globalOptions) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, optionsKey{}, opts)
}

// run provides a runtime context to a command's execution function
func run(cmd *cobra.Command, fn func(ctx *runtime.Context) error) error {
	if rc, ok := cmd.Context().Value(runtimeKey{}).(*runtime.Context); ok {
		return fn(rc)
	}

	opts, _ := cmd.Context().Value(optionsKey{}).(globalOptions)
	settings, err := config.LoadSettings(opts.SettingsPath)
	if err != nil {
		return err
	}
	if opts.Debug {
		settings.Debug = true
	}

	rc, err := runtime.GetContext(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	rc.Splog.Debug("gstack %s in %s", cmd.Name(), rc.Git.RepoRoot())
	return fn(rc)
}

// PrintError reports err in cobra's "Error:" format, adding a hint for errors
// the user can recover from. Interrupted operations print their own
// continue/abort tip.
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)

	switch {
	case errors.Is(err, errors.ErrPendingOperationExists):
		_, _ = fmt.Fprintln(w, "Hint: run 'gstack continue' to finish it or 'gstack abort' to cancel it.")
	case errors.Is(err, errors.ErrNotInitialized):
		_, _ = fmt.Fprintln(w, "Hint: run 'gstack init' to start tracking branches.")
	case errors.Is(err, errors.ErrReviewAuthRequired):
		_, _ = fmt.Fprintln(w, "Hint: export GITHUB_TOKEN or run 'gh auth login'.")
	}
}
