// Package store persists the durable state of a data directory: one
// JSON record holding the transaction log, the identity sets, and the
// last-updated stamp. Get and set are the whole contract; a missing
// file reads as empty state.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tiptally-dev/tiptally/internal/model"
)

// FileName is the state file name inside a data directory.
const FileName = "state.json"

// State is the single persisted record.
type State struct {
	Transactions       []model.Transaction `json:"transactions"`
	SelfIdentities     []string            `json:"self_identities,omitempty"`
	ExcludedIdentities []string            `json:"excluded_identities,omitempty"`
	LastUpdated        int64               `json:"last_updated"` // ms epoch, 0 = never
}

// Store reads and writes the state record for one data directory.
type Store struct {
	dataDir string
}

// New creates a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, FileName)
}

// Load reads the persisted state. A missing file yields empty state,
// not an error.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing state: %w", err)
	}
	return &state, nil
}

// Save writes the state record atomically: the new record is written
// to a temp file and renamed over the old one, so a failed run never
// leaves partial state behind.
func (s *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, FileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing state file: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state file: %w", err)
	}
	return nil
}

// Clear empties the transaction log but keeps the identity sets. The
// only destructive operation on a log.
func (s *Store) Clear() error {
	state, err := s.Load()
	if err != nil {
		return err
	}
	state.Transactions = nil
	state.LastUpdated = 0
	return s.Save(state)
}
