package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps credentials in Redis so that several processes can share
// one session. Keys are stored as plain strings under KeyPrefix.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

// RedisStoreOptions configures a RedisStore.
type RedisStoreOptions struct {
	// KeyPrefix is prepended to every key, for example "alfresco:".
	KeyPrefix string
	// TTL expires items after the given duration. Zero keeps them forever.
	TTL time.Duration
}

// NewRedisStore creates a store on top of an existing client.
func NewRedisStore(client redis.UniversalClient, opts RedisStoreOptions) *RedisStore {
	return &RedisStore{
		client:    client,
		keyPrefix: opts.KeyPrefix,
		ttl:       opts.TTL,
	}
}

// GetItem implements alfresco.CredentialStore.
func (s *RedisStore) GetItem(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}

	return value, nil
}

// SetItem implements alfresco.CredentialStore.
func (s *RedisStore) SetItem(ctx context.Context, key, value string) error {
	err := s.client.Set(ctx, s.keyPrefix+key, value, s.ttl).Err()
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// RemoveItem implements alfresco.CredentialStore.
func (s *RedisStore) RemoveItem(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.keyPrefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}
