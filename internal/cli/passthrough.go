package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"gstack.dev/gstack/internal/git"
)

// cobra's own commands and the shell completion entry points
var builtinCommands = []string{"help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd}

// ShouldPassThrough reports whether args (without the program name) name a
// command gstack does not implement and should hand to git
func ShouldPassThrough(root *cobra.Command, args []string) bool {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return false
	}
	name := args[0]
	if slices.Contains(builtinCommands, name) {
		return false
	}
	for _, cmd := range root.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return false
		}
	}
	return true
}

// HandlePassthrough runs args as a git command with the terminal attached and
// returns git's exit code. handled is false when args belong to gstack.
func HandlePassthrough(root *cobra.Command, args []string, stderr io.Writer) (code int, handled bool) {
	if !ShouldPassThrough(root, args) {
		return 0, false
	}

	_, _ = fmt.Fprintf(stderr, "\033[90mPassing command through to git...\033[0m\n")
	_, _ = fmt.Fprintf(stderr, "\033[90mRunning: \"git %s\"\033[0m\n\n", strings.Join(args, " "))

	dir, err := os.Getwd()
	if err != nil {
		PrintError(stderr, err)
		return 1, true
	}
	code, err = git.RunInteractive(dir, args...)
	if err != nil {
		PrintError(stderr, err)
		return 1, true
	}
	return code, true
}
