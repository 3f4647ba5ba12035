package failure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const (
	// StorageKey names the persisted failure log in every Store backend.
	StorageKey = "arcade.failure-log"
	// LogCapacity bounds the persisted failure log.
	LogCapacity = 50
)

// Store persists the failure log as one array under StorageKey. Writes are
// whole-array replacements; the last write wins.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// MemoryStore keeps the log in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	records []Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load(context.Context) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]Record(nil), records...)
	return nil
}

// FileStore keeps the log as a JSON array at <dir>/<StorageKey>.json.
type FileStore struct {
	path string
}

// NewFileStore returns a store rooted in dir (usually .arcade/state).
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, StorageKey+".json")}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store. A missing file is an empty log.
func (s *FileStore) Load(context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failure: read %s: %w", s.path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failure: parse %s: %w", s.path, err)
	}
	return records, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failure: ensure state dir: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failure: encode log: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failure: write log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failure: replace log: %w", err)
	}
	return nil
}

// appendBounded appends rec and drops the oldest entries beyond capacity.
func appendBounded(records []Record, rec Record, capacity int) []Record {
	records = append(records, rec)
	if over := len(records) - capacity; over > 0 {
		records = append([]Record(nil), records[over:]...)
	}
	return records
}
