package engine

import (
	"fmt"
	"slices"
	"sort"

	"gstack.dev/gstack/internal/errors"
)

// StackConfig is the branch forest rooted at the trunk.
//
// parents is the authoritative relation. children is an index rebuilt from it
// after every mutation and is never edited on its own.
type StackConfig struct {
	trunk      string
	parents    map[string]string
	reviewURLs map[string]string
	children   map[string][]string
}

// NewStackConfig creates an empty forest rooted at trunk. An empty trunk means
// the repository has not been initialized.
func NewStackConfig(trunk string) *StackConfig {
	return &StackConfig{
		trunk:      trunk,
		parents:    make(map[string]string),
		reviewURLs: make(map[string]string),
		children:   make(map[string][]string),
	}
}

// Restore rebuilds a forest from persisted records. Children on the records
// are ignored. It fails when a record names an unknown parent, duplicates a
// branch, shadows the trunk or forms a cycle.
func Restore(trunk string, records []BranchRecord) (*StackConfig, error) {
	if trunk == "" && len(records) > 0 {
		return nil, fmt.Errorf("branches are tracked but no trunk is set")
	}
	s := NewStackConfig(trunk)
	for _, r := range records {
		if r.Name == "" {
			return nil, fmt.Errorf("branch record with empty name")
		}
		if r.Name == trunk {
			return nil, fmt.Errorf("trunk %s cannot be tracked as a branch", trunk)
		}
		if _, ok := s.parents[r.Name]; ok {
			return nil, errors.NewBranchAlreadyExistsError(r.Name)
		}
		s.parents[r.Name] = r.Parent
		if r.ReviewURL != "" {
			s.reviewURLs[r.Name] = r.ReviewURL
		}
	}
	for _, r := range records {
		if r.Parent != trunk {
			if _, ok := s.parents[r.Parent]; !ok {
				return nil, fmt.Errorf("branch %s has unknown parent %s: %w", r.Name, r.Parent, errors.ErrBranchNotFound)
			}
		}
	}
	for name := range s.parents {
		if s.reachesTrunk(name) {
			continue
		}
		return nil, fmt.Errorf("branch %s is part of a parent cycle: %w", name, errors.ErrInvalidParent)
	}
	s.reindex()
	return s, nil
}

// reachesTrunk reports whether following parents from name ends at the trunk.
func (s *StackConfig) reachesTrunk(name string) bool {
	seen := make(map[string]bool)
	for cur := name; cur != s.trunk; {
		if seen[cur] {
			return false
		}
		seen[cur] = true
		p, ok := s.parents[cur]
		if !ok {
			return false
		}
		cur = p
	}
	return true
}

func (s *StackConfig) reindex() {
	children := make(map[string][]string, len(s.parents)+1)
	for name, parent := range s.parents {
		children[parent] = append(children[parent], name)
	}
	for _, c := range children {
		sort.Strings(c)
	}
	s.children = children
}

// Trunk returns the trunk branch name.
func (s *StackConfig) Trunk() string {
	return s.trunk
}

// IsInitialized reports whether a trunk has been chosen.
func (s *StackConfig) IsInitialized() bool {
	return s.trunk != ""
}

// IsTrunk reports whether name is the trunk.
func (s *StackConfig) IsTrunk(name string) bool {
	return s.trunk != "" && name == s.trunk
}

// IsTracked reports whether name is a tracked, non-trunk branch.
func (s *StackConfig) IsTracked(name string) bool {
	_, ok := s.parents[name]
	return ok
}

// known reports whether name is the trunk or a tracked branch.
func (s *StackConfig) known(name string) bool {
	return s.IsTrunk(name) || s.IsTracked(name)
}

// GetParent returns the parent of name, or "" for the trunk and untracked branches.
func (s *StackConfig) GetParent(name string) string {
	return s.parents[name]
}

// GetChildren returns the direct children of name sorted by name.
func (s *StackConfig) GetChildren(name string) []string {
	return slices.Clone(s.children[name])
}

// AllBranchNames returns every tracked branch, excluding the trunk, sorted.
func (s *StackConfig) AllBranchNames() []string {
	names := make([]string, 0, len(s.parents))
	for name := range s.parents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records returns a snapshot of every tracked branch sorted by name.
func (s *StackConfig) Records() []BranchRecord {
	names := s.AllBranchNames()
	records := make([]BranchRecord, 0, len(names))
	for _, name := range names {
		records = append(records, BranchRecord{
			Name:      name,
			Parent:    s.parents[name],
			Children:  s.GetChildren(name),
			ReviewURL: s.reviewURLs[name],
		})
	}
	return records
}

// AddBranch tracks name as a child of parent.
func (s *StackConfig) AddBranch(name, parent string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if s.known(name) {
		return errors.NewBranchAlreadyExistsError(name)
	}
	if !s.known(parent) {
		return errors.NewBranchNotFoundError(parent)
	}
	s.parents[name] = parent
	s.reindex()
	return nil
}

// RemoveBranch stops tracking name. Its direct children move up one level to
// name's parent; the moved children are returned in name order.
func (s *StackConfig) RemoveBranch(name string) ([]string, error) {
	if s.IsTrunk(name) {
		return nil, fmt.Errorf("cannot remove %s: %w", name, errors.ErrTrunkOperation)
	}
	parent, ok := s.parents[name]
	if !ok {
		return nil, errors.NewBranchNotFoundError(name)
	}
	moved := s.GetChildren(name)
	for _, child := range moved {
		s.parents[child] = parent
	}
	delete(s.parents, name)
	delete(s.reviewURLs, name)
	s.reindex()
	return moved, nil
}

// SetParent moves name under parent. The new parent must not be name itself
// or one of its descendants.
func (s *StackConfig) SetParent(name, parent string) error {
	if s.IsTrunk(name) {
		return fmt.Errorf("cannot reparent %s: %w", name, errors.ErrTrunkOperation)
	}
	if !s.IsTracked(name) {
		return errors.NewBranchNotFoundError(name)
	}
	if !s.known(parent) {
		return errors.NewBranchNotFoundError(parent)
	}
	if parent == name || s.isAncestor(name, parent) {
		return fmt.Errorf("%s cannot become the parent of %s: %w", parent, name, errors.ErrInvalidParent)
	}
	s.parents[name] = parent
	s.reindex()
	return nil
}

// isAncestor reports whether ancestor lies on the parent chain of name.
func (s *StackConfig) isAncestor(ancestor, name string) bool {
	for cur, ok := s.parents[name]; ok; cur, ok = s.parents[cur] {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// GetStack returns the path from the trunk down to branch, inclusive.
func (s *StackConfig) GetStack(branch string) ([]string, error) {
	if s.IsTrunk(branch) {
		return []string{s.trunk}, nil
	}
	if !s.IsTracked(branch) {
		return nil, errors.NewBranchNotFoundError(branch)
	}
	path := []string{branch}
	for cur := s.parents[branch]; ; cur = s.parents[cur] {
		path = append(path, cur)
		if cur == s.trunk {
			break
		}
	}
	slices.Reverse(path)
	return path, nil
}

// GetDescendants returns every branch below branch in pre-order, children
// visited in name order. branch itself is excluded.
func (s *StackConfig) GetDescendants(branch string) ([]string, error) {
	if !s.known(branch) {
		return nil, errors.NewBranchNotFoundError(branch)
	}
	var out []string
	var walk func(string)
	walk = func(name string) {
		for _, child := range s.children[name] {
			out = append(out, child)
			walk(child)
		}
	}
	walk(branch)
	return out, nil
}

// TopologicalSort deduplicates branches (first occurrence wins) and orders
// them so that an ancestor precedes its descendants. Unrelated branches keep
// their input order.
func (s *StackConfig) TopologicalSort(branches []string) []string {
	index := make(map[string]int, len(branches))
	members := make([]string, 0, len(branches))
	for _, b := range branches {
		if _, dup := index[b]; dup {
			continue
		}
		index[b] = len(members)
		members = append(members, b)
	}

	// Each member depends on its nearest ancestor within the set, which
	// turns the forest restricted to the set into a forest again.
	dependents := make([][]int, len(members))
	var ready []int
	for i, b := range members {
		dep := -1
		for cur := s.parents[b]; cur != ""; cur = s.parents[cur] {
			if j, in := index[cur]; in {
				dep = j
				break
			}
		}
		if dep < 0 {
			ready = append(ready, i)
			continue
		}
		dependents[dep] = append(dependents[dep], i)
	}

	sorted := make([]string, 0, len(members))
	for len(ready) > 0 {
		next := ready[0]
		ready = ready[1:]
		sorted = append(sorted, members[next])
		for _, d := range dependents[next] {
			pos, _ := slices.BinarySearch(ready, d)
			ready = slices.Insert(ready, pos, d)
		}
	}
	return sorted
}

// SetReviewURL records the pull request URL for a tracked branch.
func (s *StackConfig) SetReviewURL(name, url string) error {
	if !s.IsTracked(name) {
		return errors.NewBranchNotFoundError(name)
	}
	if url == "" {
		delete(s.reviewURLs, name)
		return nil
	}
	s.reviewURLs[name] = url
	return nil
}

// ReviewURL returns the recorded pull request URL for name, if any.
func (s *StackConfig) ReviewURL(name string) string {
	return s.reviewURLs[name]
}
