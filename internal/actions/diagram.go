package actions

import (
	"fmt"
	"path"
	"strings"

	"gstack.dev/gstack/internal/engine"
)

// StackCommentMarker identifies the stack diagram comment on a pull request
const StackCommentMarker = "<!-- gstack-diagram -->"

// stackDiagram renders branches (in order) as a mermaid graph rooted at the
// trunk, linking each node to its pull request and highlighting current
func stackDiagram(cfg *engine.StackConfig, branches []string, current string) string {
	trunk := cfg.Trunk()
	lines := []string{
		StackCommentMarker,
		"## Stack Overview",
		"",
		"```mermaid",
		"graph TD",
		fmt.Sprintf("    %s[%s]", trunk, trunk),
	}

	for _, name := range branches {
		if !cfg.IsTracked(name) {
			continue
		}
		if url := cfg.ReviewURL(name); url != "" {
			// Quoted label; nested brackets break mermaid
			lines = append(lines,
				fmt.Sprintf(`    %s["%s #%s"]`, name, name, path.Base(url)),
				fmt.Sprintf(`    click %s href "%s" _blank`, name, url),
			)
		} else {
			lines = append(lines, fmt.Sprintf("    %s[%s]", name, name))
		}
		lines = append(lines, fmt.Sprintf("    %s --> %s", cfg.GetParent(name), name))
		if name == current {
			lines = append(lines, fmt.Sprintf("    style %s fill:#90EE90", name))
		}
	}

	lines = append(lines, "```", "", "*Updated by gstack*")
	return strings.Join(lines, "\n")
}

// diagramBranches widens branches to every stack they belong to, so a diagram
// posted for part of a stack still shows the whole of it
func diagramBranches(cfg *engine.StackConfig, branches []string) []string {
	seen := map[string]bool{}
	var set []string
	for _, branch := range branches {
		stack, err := stackSet(cfg, branch)
		if err != nil {
			continue
		}
		for _, name := range stack {
			if !seen[name] {
				seen[name] = true
				set = append(set, name)
			}
		}
	}
	return cfg.TopologicalSort(set)
}

// pullRequestBody is the description of a newly created pull request
func pullRequestBody(parent string) string {
	return fmt.Sprintf("Part of stack based on `%s`.\n\nCreated with gstack.", parent)
}
