package actions

import (
	"fmt"

	"gstack.dev/gstack/internal/errors"
	"gstack.dev/gstack/internal/runtime"
)

// InitOptions contains options for the init command
type InitOptions struct {
	// Trunk defaults to main, then master
	Trunk string
	Force bool
}

// InitAction writes an empty stack config with the given trunk
func InitAction(ctx *runtime.Context, opts InitOptions) (string, error) {
	trunk := opts.Trunk
	if trunk == "" {
		for _, candidate := range []string{"main", "master"} {
			if ctx.Git.BranchExists(ctx.Context, candidate) {
				trunk = candidate
				break
			}
		}
		if trunk == "" {
			return "", fmt.Errorf("could not detect a trunk branch (tried main and master); pass --trunk")
		}
	}
	if !ctx.Git.BranchExists(ctx.Context, trunk) {
		return "", errors.NewBranchNotFoundError(trunk)
	}

	if _, err := ctx.Store.InitConfig(trunk, opts.Force); err != nil {
		return "", err
	}
	ctx.Splog.Info("Initialized gstack with trunk %s.", trunk)
	return trunk, nil
}
