package output

import (
	"strings"
)

// TreeData is the read side of a branch forest needed for rendering
type TreeData interface {
	Trunk() string
	GetChildren(name string) []string
	ReviewURL(name string) string
}

// StackTreeRenderer renders the branch forest below trunk, one branch per line
type StackTreeRenderer struct {
	data          TreeData
	currentBranch string
}

// NewStackTreeRenderer creates a new tree renderer
func NewStackTreeRenderer(data TreeData, currentBranch string) *StackTreeRenderer {
	return &StackTreeRenderer{data: data, currentBranch: currentBranch}
}

// Render returns the lines of the tree, trunk first
func (r *StackTreeRenderer) Render() []string {
	trunk := r.data.Trunk()
	lines := []string{r.node(trunk, true)}
	r.renderChildren(trunk, "", &lines)
	return lines
}

// String renders the tree as a newline terminated block
func (r *StackTreeRenderer) String() string {
	return strings.Join(r.Render(), "\n") + "\n"
}

func (r *StackTreeRenderer) renderChildren(parent, prefix string, lines *[]string) {
	children := r.data.GetChildren(parent)
	for i, child := range children {
		last := i == len(children)-1
		connector, next := "├─", "│ "
		if last {
			connector, next = "└─", "  "
		}
		*lines = append(*lines, treeStyle.Render(prefix+connector)+r.node(child, false))
		r.renderChildren(child, prefix+next, lines)
	}
}

func (r *StackTreeRenderer) node(name string, isTrunk bool) string {
	symbol := "◯"
	if name == r.currentBranch {
		symbol = "◉"
	}

	label := name
	switch {
	case name == r.currentBranch:
		label = currentStyle.Render(name)
	case isTrunk:
		label = trunkStyle.Render(name)
	}

	line := symbol + " " + label
	if url := r.data.ReviewURL(name); url != "" {
		line += " " + urlStyle.Render("("+url+")")
	}
	return line
}
