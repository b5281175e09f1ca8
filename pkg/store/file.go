package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps each analysis as a JSON file in a directory.
type FileStore struct {
	mu      sync.RWMutex
	baseDir string
}

// NewFileStore creates the directory if needed and returns a store on it.
func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Path returns the base directory.
func (s *FileStore) Path() string { return s.baseDir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.baseDir, id+".json")
}

func (s *FileStore) Save(_ context.Context, a *Analysis) error {
	if err := ValidateID(a.ID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(a.ID), data, 0o600); err != nil {
		return fmt.Errorf("write analysis file: %w", err)
	}
	return nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Analysis, error) {
	if ValidateID(id) != nil {
		return nil, notFound(id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("read analysis file: %w", err)
	}
	var a Analysis
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", id, err)
	}
	return &a, nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	if ValidateID(id) != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove analysis file: %w", err)
	}
	return nil
}

// List skips files that do not parse.
func (s *FileStore) List(_ context.Context, limit int) ([]*Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var out []*Analysis
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		var a Analysis
		if err := json.Unmarshal(data, &a); err != nil {
			continue
		}
		out = append(out, &a)
	}
	return newestFirst(out, limit), nil
}

func (s *FileStore) Close(context.Context) error { return nil }

var _ Store = (*FileStore)(nil)
