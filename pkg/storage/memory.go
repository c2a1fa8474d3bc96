// Package storage provides alfresco.CredentialStore implementations: an
// in-memory map, a YAML file, a Redis instance and a NATS JetStream key-value
// bucket, plus a wrapper that namespaces keys with a domain prefix.
package storage

import (
	"context"
	"sync"
)

// MemoryStore keeps credentials in process memory.
type MemoryStore struct {
	mutex sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

// GetItem implements alfresco.CredentialStore.
func (s *MemoryStore) GetItem(ctx context.Context, key string) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.items[key], nil
}

// SetItem implements alfresco.CredentialStore.
func (s *MemoryStore) SetItem(ctx context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.items[key] = value

	return nil
}

// RemoveItem implements alfresco.CredentialStore.
func (s *MemoryStore) RemoveItem(ctx context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.items, key)

	return nil
}

// Len returns the number of stored items.
func (s *MemoryStore) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.items)
}
