package cli

import (
	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/runtime"
)

// completeBranches is a helper for cobra.ValidArgsFunction and RegisterFlagCompletionFunc
// that returns the trunk and every tracked branch.
func completeBranches(cmd *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var branches []string
	err := run(cmd, func(ctx *runtime.Context) error {
		cfg, err := ctx.Store.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.IsInitialized() {
			branches = append([]string{cfg.Trunk()}, cfg.AllBranchNames()...)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return branches, cobra.ShellCompDirectiveNoFileComp
}
