package cli

import (
	"context"
	"os"
)

// Execute runs gstack with args (without the program name) and returns the
// process exit code
func Execute(ctx context.Context, version string, args []string) int {
	rootCmd := NewRootCmd(version)

	if code, handled := HandlePassthrough(rootCmd, args, os.Stderr); handled {
		return code
	}

	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(os.Stderr, err)
		return 1
	}
	return 0
}
