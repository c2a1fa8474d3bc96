package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

// ErrInvalidFilePath is returned for an empty store path.
var ErrInvalidFilePath = errors.New("invalid credential file path")

// FileStore persists credentials as a flat YAML map in a single file.
// Every write rewrites the whole file with owner-only permissions.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

// NewFileStore creates a store backed by path. The file and its directory
// are created on first write.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, ErrInvalidFilePath
	}

	return &FileStore{path: filepath.Clean(path)}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// GetItem implements alfresco.CredentialStore.
func (s *FileStore) GetItem(ctx context.Context, key string) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load()
	if err != nil {
		return "", err
	}

	return items[key], nil
}

// SetItem implements alfresco.CredentialStore.
func (s *FileStore) SetItem(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	items[key] = value

	return s.save(items)
}

// RemoveItem implements alfresco.CredentialStore.
func (s *FileStore) RemoveItem(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	items, err := s.load()
	if err != nil {
		return err
	}

	if _, ok := items[key]; !ok {
		return nil
	}

	delete(items, key)

	return s.save(items)
}

// Items returns a copy of every stored item.
func (s *FileStore) Items() (map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.load()
}

func (s *FileStore) load() (map[string]string, error) {
	items := make(map[string]string)

	// #nosec G304 -- path is chosen by the caller of NewFileStore
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}

	err = yaml.Unmarshal(data, &items)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credential file: %w", err)
	}

	if items == nil {
		items = make(map[string]string)
	}

	return items, nil
}

func (s *FileStore) save(items map[string]string) error {
	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials to YAML: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}

	return nil
}
