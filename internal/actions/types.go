package actions

// SyncResult reports what a rebase run did
type SyncResult struct {
	// OperationID identifies the persisted record driving the run
	OperationID string
	// Processed lists branches rebased by this invocation, in order
	Processed []string
	// Skipped lists queue entries that were no longer tracked
	Skipped []string
	// Merged lists branches left out because their review was merged
	Merged []string
	// Reparented maps a branch to the new parent it received
	Reparented map[string]string
	// ConflictBranch is set when the run stopped on a conflict
	ConflictBranch string
	// Completed is true when the queue ran to the end and the record was cleared
	Completed bool
}

// SubmitResult reports what a submit run did
type SubmitResult struct {
	Sync    *SyncResult
	Pushed  []string
	Created []string
	Updated []string
	// Skipped lists branches whose review is already merged
	Skipped []string
}

// ContinueResult reports the outcome of resuming a pending operation
type ContinueResult struct {
	Sync *SyncResult
	// Submit is set when the resumed operation was a submit
	Submit *SubmitResult
}
