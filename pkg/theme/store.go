package theme

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// stateFile is the JSON schema of the persisted entry.
type stateFile struct {
	Theme string `json:"theme"`
}

// FileStore persists the theme name as a small JSON file. Safe for
// concurrent use; last write wins.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store writing to path (conventionally
// .sitespec/theme.json under the site root).
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the persisted theme name. A missing or corrupted file is "no
// selection", not an error.
func (fs *FileStore) Load() (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	data, err := os.ReadFile(fs.path)
	if err != nil {
		return "", nil
	}
	var st stateFile
	if err := json.Unmarshal(data, &st); err != nil {
		return "", nil
	}
	return st.Theme, nil
}

// Save writes the theme name, creating parent directories as needed.
func (fs *FileStore) Save(name string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("failed to create theme state directory: %w", err)
	}
	data, err := json.Marshal(stateFile{Theme: name})
	if err != nil {
		return err
	}
	return os.WriteFile(fs.path, data, 0o644)
}

// MemoryStore is an in-memory Store for tests and embedding hosts.
type MemoryStore struct {
	mu    sync.Mutex
	theme string
	// FailSaves makes Save return an error, for exercising best-effort
	// persistence.
	FailSaves bool
}

// Load returns the held value.
func (ms *MemoryStore) Load() (string, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.theme, nil
}

// Save stores the value in memory.
func (ms *MemoryStore) Save(name string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.FailSaves {
		return fmt.Errorf("save disabled")
	}
	ms.theme = name
	return nil
}
