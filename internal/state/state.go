// Package state persists the CLI's last view selection and keeps one
// selection per session for the viewer.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joshharrison/ganttboard/internal/filter"
)

// DefaultDir is where the CLI keeps its state, relative to the working
// directory.
const DefaultDir = ".ganttboard"

const stateFile = "selection.json"

// SelectionState is the persisted selection.
type SelectionState struct {
	Selection filter.Selection `json:"selection"`
	SavedAt   time.Time        `json:"saved_at"`
	SavedBy   string           `json:"saved_by,omitempty"`

	mu   sync.Mutex `json:"-"`
	path string     `json:"-"`
}

func statePath(dir string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, stateFile)
}

// New creates the state directory and persists sel.
func New(dir string, sel filter.Selection, savedBy string) (*SelectionState, error) {
	path := statePath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	s := &SelectionState{
		Selection: sel.Normalize(),
		SavedAt:   time.Now().UTC(),
		SavedBy:   savedBy,
		path:      path,
	}
	if err := s.Save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Load reads existing state from disk.
func Load(dir string) (*SelectionState, error) {
	path := statePath(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s SelectionState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.Selection = s.Selection.Normalize()
	s.path = path
	return &s, nil
}

// LoadOrDefault returns the saved selection, or the default one when
// nothing has been saved yet.
func LoadOrDefault(dir string) (filter.Selection, error) {
	if !Exists(dir) {
		return filter.Default(), nil
	}
	s, err := Load(dir)
	if err != nil {
		return filter.Selection{}, err
	}
	return s.Current(), nil
}

// Exists checks if a state file exists.
func Exists(dir string) bool {
	_, err := os.Stat(statePath(dir))
	return err == nil
}

// Save persists the current state to disk.
func (s *SelectionState) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0644)
}

// Update replaces the selection and saves.
func (s *SelectionState) Update(sel filter.Selection, savedBy string) error {
	s.mu.Lock()
	s.Selection = sel.Normalize()
	s.SavedAt = time.Now().UTC()
	s.SavedBy = savedBy
	s.mu.Unlock()
	return s.Save()
}

// Current returns the stored selection.
func (s *SelectionState) Current() filter.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Selection
}

// Clean removes the state directory.
func Clean(dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	return os.RemoveAll(dir)
}
