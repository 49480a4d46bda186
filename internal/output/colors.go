package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// IsTTY reports whether both stdin and stdout are terminals
func IsTTY() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConfigureColors turns styling off when w is not a terminal or NO_COLOR is set
func ConfigureColors(w io.Writer) {
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(f).EnvColorProfile())
}

var (
	currentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	trunkStyle   = lipgloss.NewStyle().Bold(true)
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	treeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// ColorRed colors text red
func ColorRed(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(text)
}

// ColorYellow colors text yellow
func ColorYellow(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Render(text)
}

// ColorCyan colors text cyan
func ColorCyan(text string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Render(text)
}

// ColorBranchName styles a branch name, highlighting the checked out branch
func ColorBranchName(name string, isCurrent bool) string {
	if isCurrent {
		return currentStyle.Render(name + " (current)")
	}
	return ColorCyan(name)
}
