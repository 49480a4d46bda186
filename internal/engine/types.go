package engine

// BranchRecord is the persisted view of one tracked branch.
// Children is derived from the parent relation and sorted by name.
type BranchRecord struct {
	Name      string
	Parent    string
	Children  []string
	ReviewURL string
}
