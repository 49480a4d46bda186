package engine_test

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"gstack.dev/gstack/internal/engine"
)

// ============================================================================
// Property-Based Tests for Forest Invariants
// ============================================================================

// drawForest builds a random forest by attaching each new branch to the trunk
// or to an earlier branch.
func drawForest(t *rapid.T) *engine.StackConfig {
	s := engine.NewStackConfig("main")
	n := rapid.IntRange(0, 15).Draw(t, "numBranches")
	names := []string{"main"}
	for i := 0; i < n; i++ {
		parent := rapid.SampledFrom(names).Draw(t, fmt.Sprintf("parent-%d", i))
		name := fmt.Sprintf("b%d", i)
		if err := s.AddBranch(name, parent); err != nil {
			t.Fatalf("AddBranch(%s, %s): %v", name, parent, err)
		}
		names = append(names, name)
	}
	return s
}

func isAncestor(s *engine.StackConfig, ancestor, branch string) bool {
	for cur := s.GetParent(branch); cur != ""; cur = s.GetParent(cur) {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// checkChildrenInverse verifies the children index is the exact inverse of the parent relation.
func checkChildrenInverse(t *rapid.T, s *engine.StackConfig) {
	all := append([]string{s.Trunk()}, s.AllBranchNames()...)
	for _, name := range all {
		for _, child := range s.GetChildren(name) {
			if s.GetParent(child) != name {
				t.Fatalf("%s lists child %s whose parent is %s", name, child, s.GetParent(child))
			}
		}
	}
	for _, name := range s.AllBranchNames() {
		parent := s.GetParent(name)
		if !slices.Contains(s.GetChildren(parent), name) {
			t.Fatalf("%s is missing from children of %s", name, parent)
		}
	}
}

// TestProperty_GetStackIsRootPath verifies every stack starts at the trunk, ends at the branch and follows parents.
func TestProperty_GetStackIsRootPath(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawForest(t)
		for _, name := range s.AllBranchNames() {
			stack, err := s.GetStack(name)
			if err != nil {
				t.Fatalf("GetStack(%s): %v", name, err)
			}
			if stack[0] != "main" || stack[len(stack)-1] != name {
				t.Fatalf("stack %v does not run from main to %s", stack, name)
			}
			seen := make(map[string]bool)
			for i, b := range stack {
				if seen[b] {
					t.Fatalf("stack %v repeats %s", stack, b)
				}
				seen[b] = true
				if i > 0 && s.GetParent(b) != stack[i-1] {
					t.Fatalf("stack %v breaks at %s", stack, b)
				}
			}
		}
	})
}

// TestProperty_RemoveKeepsForestConnected verifies removal never orphans a branch.
func TestProperty_RemoveKeepsForestConnected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawForest(t)
		names := s.AllBranchNames()
		if len(names) == 0 {
			return
		}
		victim := rapid.SampledFrom(names).Draw(t, "victim")
		formerChildren := s.GetChildren(victim)
		formerParent := s.GetParent(victim)

		moved, err := s.RemoveBranch(victim)
		if err != nil {
			t.Fatalf("RemoveBranch(%s): %v", victim, err)
		}
		if !slices.Equal(moved, formerChildren) {
			t.Fatalf("moved %v, expected %v", moved, formerChildren)
		}
		for _, child := range formerChildren {
			if s.GetParent(child) != formerParent {
				t.Fatalf("%s has parent %s, expected %s", child, s.GetParent(child), formerParent)
			}
		}
		for _, r := range s.Records() {
			if r.Parent == victim || slices.Contains(r.Children, victim) {
				t.Fatalf("record %s still references %s", r.Name, victim)
			}
			if _, err := s.GetStack(r.Name); err != nil {
				t.Fatalf("%s is disconnected: %v", r.Name, err)
			}
		}
		checkChildrenInverse(t, s)
	})
}

// TestProperty_TopologicalSortOrdersAncestorsFirst verifies ancestors precede descendants without duplicates.
func TestProperty_TopologicalSortOrdersAncestorsFirst(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawForest(t)
		names := s.AllBranchNames()
		if len(names) == 0 {
			return
		}
		// Overlapping stack and descendant queries, shuffled by drawing indices.
		start := rapid.SampledFrom(names).Draw(t, "start")
		stack, _ := s.GetStack(start)
		desc, _ := s.GetDescendants(start)
		input := append(append([]string{}, desc...), stack...)
		extra := rapid.SliceOf(rapid.SampledFrom(names)).Draw(t, "extra")
		input = append(input, extra...)

		got := s.TopologicalSort(input)

		pos := make(map[string]int, len(got))
		for i, b := range got {
			if _, dup := pos[b]; dup {
				t.Fatalf("%s appears twice in %v", b, got)
			}
			pos[b] = i
		}
		for _, b := range input {
			if _, ok := pos[b]; !ok {
				t.Fatalf("%s missing from %v", b, got)
			}
		}
		for _, x := range got {
			for _, y := range got {
				if isAncestor(s, x, y) && pos[x] > pos[y] {
					t.Fatalf("ancestor %s placed after %s in %v", x, y, got)
				}
			}
		}
	})
}

// TestProperty_RestoreRoundTrip verifies records rebuild an identical forest.
func TestProperty_RestoreRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawForest(t)
		restored, err := engine.Restore(s.Trunk(), s.Records())
		if err != nil {
			t.Fatalf("Restore: %v", err)
		}
		if !slices.EqualFunc(s.Records(), restored.Records(), func(a, b engine.BranchRecord) bool {
			return a.Name == b.Name && a.Parent == b.Parent && slices.Equal(a.Children, b.Children)
		}) {
			t.Fatalf("records differ after restore")
		}
		checkChildrenInverse(t, restored)
	})
}

// TestProperty_SetParentNeverCreatesCycles verifies random reparenting keeps every branch reachable from the trunk.
func TestProperty_SetParentNeverCreatesCycles(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := drawForest(t)
		names := s.AllBranchNames()
		if len(names) == 0 {
			return
		}
		moves := rapid.IntRange(1, 10).Draw(t, "moves")
		candidates := append([]string{"main"}, names...)
		for i := 0; i < moves; i++ {
			b := rapid.SampledFrom(names).Draw(t, fmt.Sprintf("branch-%d", i))
			p := rapid.SampledFrom(candidates).Draw(t, fmt.Sprintf("parent-%d", i))
			_ = s.SetParent(b, p)
		}
		for _, name := range names {
			if _, err := s.GetStack(name); err != nil {
				t.Fatalf("%s unreachable after moves: %v", name, err)
			}
		}
		checkChildrenInverse(t, s)
	})
}
