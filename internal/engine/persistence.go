package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileName is the snapshot file written inside the data directory.
const FileName = "firmdesk.json"

// Persistence handles the disk I/O for the MemStore.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Persistence{DataDir: dir}, nil
}

// Path returns the snapshot file location.
func (p *Persistence) Path() string {
	return filepath.Join(p.DataDir, FileName)
}

// Save writes the full key/value map to disk atomically.
func (p *Persistence) Save(data map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := p.Path()
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tempPath, bytes, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	// Rename is atomic on POSIX: readers see the old file or the new one.
	if err := os.Rename(tempPath, filePath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file yields an empty map.
// A corrupt file is an error so that the next Save cannot silently replace it.
func (p *Persistence) Load() (map[string]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(p.Path())
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	data := make(map[string]string)
	if len(content) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(content, &data); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", p.Path(), err)
	}
	return data, nil
}

// OpenFile loads dir's snapshot and returns a write-through MemStore over it.
func OpenFile(dir string) (*MemStore, error) {
	p, err := NewPersistence(dir)
	if err != nil {
		return nil, err
	}
	data, err := p.Load()
	if err != nil {
		return nil, err
	}
	return NewMemStore(data, p), nil
}
