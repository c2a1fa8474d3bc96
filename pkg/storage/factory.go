package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// Type represents the kind of credential store backend.
type Type string

const (
	// TypeMemory represents an in-memory store.
	TypeMemory Type = "memory"

	// TypeFile represents a YAML file store.
	TypeFile Type = "file"

	// TypeRedis represents a Redis store.
	TypeRedis Type = "redis"

	// TypeNATS represents a NATS JetStream KV store.
	TypeNATS Type = "nats"
)

// Static errors for err113 compliance.
var (
	ErrFileConfigRequired  = errors.New("file path required for file credential store")
	ErrRedisConfigRequired = errors.New("redis configuration required for redis credential store")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS credential store")
	ErrUnsupportedType     = errors.New("unsupported credential store type")
)

// Config configures a credential store backend.
type Config struct {
	// Type is the backend type. Empty means TypeMemory.
	Type Type

	// FilePath is the YAML file used by TypeFile.
	FilePath string

	// Redis configures TypeRedis.
	Redis *RedisConfig

	// NATS configures TypeNATS.
	NATS *NATSKVConfig
}

// RedisConfig configures a Redis backend.
type RedisConfig struct {
	// Addrs lists one address for a single node, several for a cluster.
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

// Closer releases backend resources such as network connections.
type Closer func() error

func noopCloser() error { return nil }

// NewStoreFromConfig creates a credential store from configuration. The
// returned Closer must be called when the store is no longer used.
func NewStoreFromConfig(config *Config) (alfresco.CredentialStore, Closer, error) {
	if config == nil {
		config = &Config{Type: TypeMemory}
	}

	switch config.Type {
	case TypeMemory, "":
		return NewMemoryStore(), noopCloser, nil

	case TypeFile:
		if config.FilePath == "" {
			return nil, nil, ErrFileConfigRequired
		}

		store, err := NewFileStore(config.FilePath)
		if err != nil {
			return nil, nil, err
		}

		return store, noopCloser, nil

	case TypeRedis:
		if config.Redis == nil || len(config.Redis.Addrs) == 0 {
			return nil, nil, ErrRedisConfigRequired
		}

		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    config.Redis.Addrs,
			Username: config.Redis.Username,
			Password: config.Redis.Password,
			DB:       config.Redis.DB,
		})

		store := NewRedisStore(client, RedisStoreOptions{
			KeyPrefix: config.Redis.KeyPrefix,
			TTL:       config.Redis.TTL,
		})

		return store, client.Close, nil

	case TypeNATS:
		if config.NATS == nil {
			return nil, nil, ErrNATSConfigRequired
		}

		store, conn, err := ConnectNATSKVStore(config.NATS)
		if err != nil {
			return nil, nil, err
		}

		return store, func() error {
			conn.Close()

			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedType, config.Type)
	}
}
