package annotations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// snapshot is the on-disk schema.
type snapshot struct {
	Version int                   `json:"version"`
	SavedAt time.Time             `json:"saved_at"`
	Files   map[string]Definition `json:"files"`
	Symbols map[string]Definition `json:"symbols"`
	Marks   map[string]FileMark   `json:"marks"`
}

func (s *Store) filePath() string {
	return filepath.Join(s.root, DirName, FileName)
}

func (s *Store) lockPath() string {
	return s.filePath() + ".lock"
}

// Save writes the annotations to <root>/.sightglass/annotations.json with a
// temp-file rename so a crash never leaves a half-written file. An flock
// serializes writers across processes.
func (s *Store) Save() error {
	lock := newFileLock(s.lockPath())
	if err := lock.lock(5 * time.Second); err != nil {
		return fmt.Errorf("locking annotations: %w", err)
	}
	defer lock.unlock()

	s.mu.RLock()
	snap := snapshot{
		Version: schemaVersion,
		SavedAt: time.Now(),
		Files:   s.files,
		Symbols: s.symbols,
		Marks:   s.marks,
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling annotations: %w", err)
	}

	path := s.filePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating annotations directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing annotations: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming annotations: %w", err)
	}
	return nil
}

// Load replaces the in-memory state with the persisted file. A missing
// file leaves the store empty and is not an error.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.filePath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading annotations: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing annotations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = snap.Files
	s.symbols = snap.Symbols
	s.marks = snap.Marks
	if s.files == nil {
		s.files = make(map[string]Definition)
	}
	if s.symbols == nil {
		s.symbols = make(map[string]Definition)
	}
	if s.marks == nil {
		s.marks = make(map[string]FileMark)
	}
	return nil
}
