package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gstack.dev/gstack/internal/engine"
	gserrors "gstack.dev/gstack/internal/errors"
)

const (
	// ConfigFileName is the tracked stack configuration at the repository root
	ConfigFileName = ".gstack_config.json"
	// StateFileName is the operation record inside the git directory
	StateFileName = ".gstack_state.json"
)

// Store reads and writes the two gstack files of one repository.
type Store struct {
	repoRoot string
	gitDir   string
}

// NewStore creates a store for the repository at repoRoot whose git directory is gitDir.
func NewStore(repoRoot, gitDir string) *Store {
	return &Store{repoRoot: repoRoot, gitDir: gitDir}
}

// ConfigPath returns the location of the tracked configuration file
func (s *Store) ConfigPath() string {
	return filepath.Join(s.repoRoot, ConfigFileName)
}

// StatePath returns the location of the operation record
func (s *Store) StatePath() string {
	return filepath.Join(s.gitDir, StateFileName)
}

type branchJSON struct {
	Parent    string   `json:"parent"`
	Children  []string `json:"children"`
	ReviewURL string   `json:"reviewUrl,omitempty"`
}

type configJSON struct {
	Trunk    string                `json:"trunk"`
	Branches map[string]branchJSON `json:"branches"`
}

// LoadConfig reads the stack configuration. A missing file yields an
// uninitialized config; an unreadable or invalid one is ErrConfigCorrupted.
func (s *Store) LoadConfig() (*engine.StackConfig, error) {
	path := s.ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return engine.NewStackConfig(""), nil
		}
		return nil, fmt.Errorf("failed to read stack config: %w", err)
	}

	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, gserrors.NewConfigCorruptedError(path, err)
	}

	records := make([]engine.BranchRecord, 0, len(raw.Branches))
	for name, b := range raw.Branches {
		records = append(records, engine.BranchRecord{
			Name:      name,
			Parent:    b.Parent,
			ReviewURL: b.ReviewURL,
		})
	}
	cfg, err := engine.Restore(raw.Trunk, records)
	if err != nil {
		return nil, gserrors.NewConfigCorruptedError(path, err)
	}
	return cfg, nil
}

// SaveConfig atomically writes the stack configuration.
func (s *Store) SaveConfig(cfg *engine.StackConfig) error {
	raw := configJSON{
		Trunk:    cfg.Trunk(),
		Branches: make(map[string]branchJSON),
	}
	for _, r := range cfg.Records() {
		children := r.Children
		if children == nil {
			children = []string{}
		}
		raw.Branches[r.Name] = branchJSON{
			Parent:    r.Parent,
			Children:  children,
			ReviewURL: r.ReviewURL,
		}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stack config: %w", err)
	}
	return writeFileAtomic(s.ConfigPath(), append(data, '\n'), 0644)
}

// IsInitialized reports whether a stack config with a trunk exists.
func (s *Store) IsInitialized() (bool, error) {
	cfg, err := s.LoadConfig()
	if err != nil {
		return false, err
	}
	return cfg.IsInitialized(), nil
}

// InitConfig writes a fresh config rooted at trunk. An existing config is only
// replaced when force is set.
func (s *Store) InitConfig(trunk string, force bool) (*engine.StackConfig, error) {
	if trunk == "" {
		return nil, fmt.Errorf("trunk cannot be empty")
	}
	if !force {
		initialized, err := s.IsInitialized()
		if err != nil {
			return nil, err
		}
		if initialized {
			return nil, gserrors.ErrAlreadyInitialized
		}
	}
	cfg := engine.NewStackConfig(trunk)
	if err := s.SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadState reads the operation record. It returns nil when no operation is pending.
func (s *Store) LoadState() (*OperationState, error) {
	path := s.StatePath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read operation state: %w", err)
	}

	var state OperationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, gserrors.NewConfigCorruptedError(path, err)
	}
	if err := state.Validate(); err != nil {
		return nil, gserrors.NewConfigCorruptedError(path, err)
	}
	return &state, nil
}

// SaveState atomically writes the operation record.
func (s *Store) SaveState(state *OperationState) error {
	data, err := marshalState(state)
	if err != nil {
		return err
	}
	return writeFileAtomic(s.StatePath(), data, 0600)
}

// CreateState writes a new operation record. When a record already exists it
// is left untouched and a PendingOperationError naming its command is returned.
func (s *Store) CreateState(state *OperationState) error {
	data, err := marshalState(state)
	if err != nil {
		return err
	}
	err = writeFileExclusive(s.StatePath(), data, 0600)
	if !errors.Is(err, os.ErrExist) {
		return err
	}

	command := "unknown"
	if existing, loadErr := s.LoadState(); loadErr == nil && existing != nil {
		command = string(existing.ActiveCommand)
	}
	return gserrors.NewPendingOperationError(command)
}

func marshalState(state *OperationState) ([]byte, error) {
	if err := state.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to save invalid operation state: %w", err)
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operation state: %w", err)
	}
	return append(data, '\n'), nil
}

// ClearState removes the operation record. A missing record is not an error.
func (s *Store) ClearState() error {
	err := os.Remove(s.StatePath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear operation state: %w", err)
	}
	return nil
}

// HasPendingState reports whether an operation record exists on disk.
func (s *Store) HasPendingState() bool {
	_, err := os.Stat(s.StatePath())
	return err == nil
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path, so readers see either the old or the new content.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTempFile(path, data, perm)
	if err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath) // best effort cleanup
		return fmt.Errorf("renaming %s: %w", path, err)
	}
	return nil
}

// writeFileExclusive is writeFileAtomic for a path that must not exist yet.
// The complete file is hard linked into place, which fails with os.ErrExist
// when another process got there first.
func writeFileExclusive(path string, data []byte, perm os.FileMode) error {
	tmpPath, err := writeTempFile(path, data, perm)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmpPath) }()

	err = os.Link(tmpPath, path)
	if err == nil || errors.Is(err, os.ErrExist) {
		return err
	}

	// No hard links on this filesystem
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	_, writeErr := f.Write(data)
	if writeErr == nil {
		writeErr = f.Sync()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(path) // best effort cleanup
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	return nil
}

// writeTempFile writes data to a synced temporary file next to path and
// returns its name
func writeTempFile(path string, data []byte, perm os.FileMode) (string, error) {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temporary file for %s: %w", path, err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	if writeErr == nil {
		writeErr = tmpFile.Sync()
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		_ = os.Remove(tmpPath) // best effort cleanup
		return "", fmt.Errorf("writing temporary file for %s: %w", path, writeErr)
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath) // best effort cleanup
		return "", fmt.Errorf("closing temporary file for %s: %w", path, closeErr)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		_ = os.Remove(tmpPath) // best effort cleanup
		return "", fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return tmpPath, nil
}
