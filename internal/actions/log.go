package actions

import (
	"gstack.dev/gstack/internal/output"
	"gstack.dev/gstack/internal/runtime"
)

// LogAction prints the tracked branches as a tree below the trunk
func LogAction(ctx *runtime.Context) error {
	cfg, err := loadInitializedConfig(ctx)
	if err != nil {
		return err
	}

	current, err := ctx.Git.CurrentBranch(ctx.Context)
	if err != nil {
		current = ""
	}

	if len(cfg.AllBranchNames()) == 0 {
		ctx.Splog.Info("No stacked branches. Trunk: %s", cfg.Trunk())
		return nil
	}

	ctx.Splog.Page(output.NewStackTreeRenderer(cfg, current).String())
	return nil
}
