package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
)

// ErrNATSBucketRequired is returned when no bucket name is configured.
var ErrNATSBucketRequired = errors.New("NATS KV bucket name is required")

// KeyValue is the subset of nats.KeyValue used by NATSKVStore.
type KeyValue interface {
	Get(key string) (nats.KeyValueEntry, error)
	PutString(key string, value string) (uint64, error)
	Delete(key string, opts ...nats.DeleteOpt) error
}

// NATSKVStore keeps credentials in a JetStream key-value bucket.
type NATSKVStore struct {
	kv KeyValue
}

// NewNATSKVStore creates a store on top of an opened bucket.
func NewNATSKVStore(kv KeyValue) *NATSKVStore {
	return &NATSKVStore{kv: kv}
}

// NATSKVConfig configures a bucket binding.
type NATSKVConfig struct {
	// URL is the NATS server URL, for example nats.DefaultURL.
	URL string
	// Bucket is the key-value bucket name. It is created when missing.
	Bucket string
	// Replicas is the replica count used when the bucket is created.
	Replicas int
}

// ConnectNATSKVStore dials the server, binds the bucket (creating it when it
// does not exist) and returns the store together with the connection, which
// the caller must close.
func ConnectNATSKVStore(config *NATSKVConfig) (*NATSKVStore, *nats.Conn, error) {
	if config == nil || config.Bucket == "" {
		return nil, nil, ErrNATSBucketRequired
	}

	url := config.URL
	if url == "" {
		url = nats.DefaultURL
	}

	conn, err := nats.Connect(url)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:   config.Bucket,
			Replicas: config.Replicas,
		})
	}

	if err != nil {
		conn.Close()

		return nil, nil, fmt.Errorf("binding KV bucket %s: %w", config.Bucket, err)
	}

	return NewNATSKVStore(kv), conn, nil
}

// GetItem implements alfresco.CredentialStore.
func (s *NATSKVStore) GetItem(ctx context.Context, key string) (string, error) {
	entry, err := s.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("nats kv get: %w", err)
	}

	return string(entry.Value()), nil
}

// SetItem implements alfresco.CredentialStore.
func (s *NATSKVStore) SetItem(ctx context.Context, key, value string) error {
	_, err := s.kv.PutString(key, value)
	if err != nil {
		return fmt.Errorf("nats kv put: %w", err)
	}

	return nil
}

// RemoveItem implements alfresco.CredentialStore.
func (s *NATSKVStore) RemoveItem(ctx context.Context, key string) error {
	err := s.kv.Delete(key)
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("nats kv delete: %w", err)
	}

	return nil
}
