package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// FileStore keeps all records in a single JSON file. Every save rewrites the file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type fileContent struct {
	Items []*Record `json:"items"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, record *Record) error {
	if err := validate(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return err
	}

	for _, existing := range content.Items {
		if existing.ID == record.ID {
			return fmt.Errorf("history record %s already exists", record.ID)
		}
	}
	content.Items = append(content.Items, record)

	return s.write(content)
}

func (s *FileStore) List(_ context.Context, limit int) ([]*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return nil, err
	}

	items := content.Items
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	if limit = normalizeLimit(limit); len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *FileStore) Get(_ context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return nil, err
	}

	var found *Record
	for _, record := range content.Items {
		if record.ID == id {
			return record, nil
		}
		if strings.HasPrefix(record.ID, id) {
			if found != nil {
				return nil, ErrAmbiguous
			}
			found = record
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (*fileContent, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &fileContent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history file: %w", err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return &fileContent{}, nil
	}

	var content fileContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("decoding history file %s: %w", s.path, err)
	}
	return &content, nil
}

// write replaces the file atomically through a temporary sibling.
func (s *FileStore) write(content *fileContent) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating history directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating history file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(content); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding history file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
