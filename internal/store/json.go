package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"FundEye/internal/model"
)

// JSONStore keeps the tracked fund set in a pretty-printed JSON file.
// Saves go through a temp file + rename so readers never observe a
// partial write.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
}

// NewJSONStore creates a store backed by filePath, creating the parent
// directory if needed.
func NewJSONStore(filePath string) (*JSONStore, error) {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	return &JSONStore{filePath: filePath}, nil
}

// Load reads the fund set. A missing file yields an empty set.
func (s *JSONStore) Load() ([]model.Fund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Fund{}, nil
		}
		return nil, fmt.Errorf("read fund file: %w", err)
	}
	var funds []model.Fund
	if err := json.Unmarshal(data, &funds); err != nil {
		return nil, fmt.Errorf("parse fund file: %w", err)
	}
	return funds, nil
}

// Save atomically replaces the stored fund set.
func (s *JSONStore) Save(funds []model.Fund) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(funds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal funds: %w", err)
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write fund file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		return fmt.Errorf("replace fund file: %w", err)
	}
	return nil
}
