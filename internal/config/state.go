package config

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Command names the multi-branch command that owns an operation record
type Command string

const (
	// CommandSync rebases a queue of branches onto their parents
	CommandSync Command = "sync"
	// CommandSubmit rebases a queue and then pushes and opens pull requests for it
	CommandSubmit Command = "submit"
)

// OperationState is the record of a multi-branch command that has not finished.
// Queue entries before Cursor are done; Queue[Cursor] is the one in progress.
type OperationState struct {
	ID            string    `json:"id"`
	ActiveCommand Command   `json:"activeCommand"`
	Queue         []string  `json:"queue"`
	Cursor        int       `json:"cursor"`
	OriginalHead  string    `json:"originalHead"`
	StartedAt     time.Time `json:"startedAt"`
	// Draft carries submit --draft over to continue
	Draft         bool      `json:"draft,omitempty"`
}

// NewOperationState creates a record positioned at the start of queue
func NewOperationState(command Command, queue []string, originalHead string) *OperationState {
	return &OperationState{
		ID:            uuid.NewString(),
		ActiveCommand: command,
		Queue:         queue,
		Cursor:        0,
		OriginalHead:  originalHead,
		StartedAt:     time.Now().UTC(),
	}
}

// Validate checks the record for values no command could have written
func (s *OperationState) Validate() error {
	switch s.ActiveCommand {
	case CommandSync, CommandSubmit:
	default:
		return fmt.Errorf("unknown command %q", s.ActiveCommand)
	}
	if s.Cursor < 0 || s.Cursor > len(s.Queue) {
		return fmt.Errorf("cursor %d out of range for queue of %d", s.Cursor, len(s.Queue))
	}
	return nil
}

// CurrentBranch returns the queue entry at the cursor, or "" when the queue is exhausted
func (s *OperationState) CurrentBranch() string {
	if s.IsComplete() {
		return ""
	}
	return s.Queue[s.Cursor]
}

// IsComplete reports whether every queue entry has been processed
func (s *OperationState) IsComplete() bool {
	return s.Cursor >= len(s.Queue)
}

// Advance marks the current entry as done
func (s *OperationState) Advance() {
	if !s.IsComplete() {
		s.Cursor++
	}
}

// Remaining returns the entries that still have to be processed, including the current one
func (s *OperationState) Remaining() []string {
	if s.IsComplete() {
		return nil
	}
	return s.Queue[s.Cursor:]
}
