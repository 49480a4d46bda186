package git

import (
	"context"
	"errors"
	"strings"

	gserrors "gstack.dev/gstack/internal/errors"
)

// rejectionMarkers are the git messages that mean the lease did not hold
var rejectionMarkers = []string{
	"stale info",
	"[rejected]",
	"fetch first",
	"non-fast-forward",
}

// Push pushes branch with --force-with-lease, setting the upstream when asked
func (r *RealRunner) Push(ctx context.Context, branch string, setUpstream bool) PushOutcome {
	args := []string{"push"}
	if setUpstream {
		args = append(args, "-u")
	}
	args = append(args, "--force-with-lease", r.remote, branch)

	_, err := r.cmd.Run(ctx, args...)
	if err == nil {
		return PushOutcome{Status: PushDone}
	}

	code := -1
	detail := err.Error()
	var cmdErr *gserrors.GitCommandError
	if errors.As(err, &cmdErr) {
		code = cmdErr.ExitCode()
		detail = strings.TrimSpace(cmdErr.Stderr)
	}
	if isRejection(detail) {
		return PushOutcome{Status: PushRejected, Code: code, Detail: detail}
	}
	return PushOutcome{Status: PushFatal, Code: code, Detail: detail}
}

func isRejection(output string) bool {
	for _, m := range rejectionMarkers {
		if strings.Contains(output, m) {
			return true
		}
	}
	return false
}

// HasUpstream reports whether branch has a remote tracking branch configured
func (r *RealRunner) HasUpstream(ctx context.Context, branch string) bool {
	_, err := r.cmd.Run(ctx, "config", "--get", "branch."+branch+".remote")
	return err == nil
}
