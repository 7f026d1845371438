// Package state remembers where the reader left each document: the mode it
// was in and how far each view was scrolled. Zoom history is not saved.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	stateFileName = "positions.json"
	hashBytes     = 8192 // Leading bytes that identify a document
)

// Position is the saved view state of one document.
type Position struct {
	Mode      string `json:"mode"`
	PageRow   int    `json:"page_row"`
	InlineRow int    `json:"inline_row"`
}

// Store persists positions in a JSON file under XDG_STATE_HOME/zoom/.
type Store struct {
	path string
	data map[string]Position
	mu   sync.RWMutex
}

// NewStore creates or loads the store. A corrupt state file is ignored.
func NewStore() (*Store, error) {
	dir := stateDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	s := &Store{
		path: filepath.Join(dir, stateFileName),
		data: make(map[string]Position),
	}
	if err := s.load(); err != nil {
		s.data = make(map[string]Position)
	}
	return s, nil
}

// stateDir returns XDG_STATE_HOME/zoom or ~/.local/state/zoom
func stateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "zoom")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "zoom")
}

// Hash identifies a document by its leading content.
func Hash(content string) string {
	if len(content) > hashBytes {
		content = content[:hashBytes]
	}
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:16])
}

// Get returns the saved position for hash.
func (s *Store) Get(hash string) (Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[hash]
	return p, ok
}

// Set saves the position for hash and writes the file.
func (s *Store) Set(hash string, p Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[hash] = p
	return s.save()
}

// Clear forgets hash.
func (s *Store) Clear(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, hash)
	return s.save()
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *Store) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
