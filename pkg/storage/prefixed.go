package storage

import (
	"context"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// PrefixedStore namespaces every key of an underlying store as "<prefix>_<key>".
type PrefixedStore struct {
	store  alfresco.CredentialStore
	prefix string
}

// WithDomainPrefix wraps store so that keys are namespaced by prefix.
// An empty prefix returns store unchanged.
func WithDomainPrefix(store alfresco.CredentialStore, prefix string) alfresco.CredentialStore {
	if prefix == "" {
		return store
	}

	return &PrefixedStore{store: store, prefix: prefix + "_"}
}

// GetItem implements alfresco.CredentialStore.
func (s *PrefixedStore) GetItem(ctx context.Context, key string) (string, error) {
	return s.store.GetItem(ctx, s.prefix+key)
}

// SetItem implements alfresco.CredentialStore.
func (s *PrefixedStore) SetItem(ctx context.Context, key, value string) error {
	return s.store.SetItem(ctx, s.prefix+key, value)
}

// RemoveItem implements alfresco.CredentialStore.
func (s *PrefixedStore) RemoveItem(ctx context.Context, key string) error {
	return s.store.RemoveItem(ctx, s.prefix+key)
}
