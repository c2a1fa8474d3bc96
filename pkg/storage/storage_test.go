package storage_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/storage"
)

func exerciseStore(t *testing.T, store alfresco.CredentialStore) {
	t.Helper()

	ctx := context.Background()

	value, err := store.GetItem(ctx, "ticket-ECM")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, store.SetItem(ctx, "ticket-ECM", "TICKET_1"))
	require.NoError(t, store.SetItem(ctx, "ACS_USERNAME", "admin"))

	value, err = store.GetItem(ctx, "ticket-ECM")
	require.NoError(t, err)
	assert.Equal(t, "TICKET_1", value)

	require.NoError(t, store.SetItem(ctx, "ticket-ECM", "TICKET_2"))

	value, err = store.GetItem(ctx, "ticket-ECM")
	require.NoError(t, err)
	assert.Equal(t, "TICKET_2", value)

	require.NoError(t, store.RemoveItem(ctx, "ticket-ECM"))
	require.NoError(t, store.RemoveItem(ctx, "ticket-ECM"))

	value, err = store.GetItem(ctx, "ticket-ECM")
	require.NoError(t, err)
	assert.Empty(t, value)

	value, err = store.GetItem(ctx, "ACS_USERNAME")
	require.NoError(t, err)
	assert.Equal(t, "admin", value)
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	exerciseStore(t, store)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_Concurrent(t *testing.T) {
	t.Parallel()

	store := storage.NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			key := fmt.Sprintf("key-%d", n)
			_ = store.SetItem(ctx, key, "value")
			_, _ = store.GetItem(ctx, key)
		}(i)
	}

	wg.Wait()
	assert.Equal(t, 20, store.Len())
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credentials.yml")

	store, err := storage.NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())

	exerciseStore(t, store)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// A second store on the same file sees the persisted items.
	reopened, err := storage.NewFileStore(path)
	require.NoError(t, err)

	items, err := reopened.Items()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"ACS_USERNAME": "admin"}, items)
}

func TestFileStore_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()

		_, err := storage.NewFileStore("")
		require.ErrorIs(t, err, storage.ErrInvalidFilePath)
	})

	t.Run("corrupt file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "credentials.yml")
		require.NoError(t, os.WriteFile(path, []byte("- not\n- a map\n"), 0o600))

		store, err := storage.NewFileStore(path)
		require.NoError(t, err)

		_, err = store.GetItem(context.Background(), "key")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse credential file")
	})

	t.Run("empty file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "credentials.yml")
		require.NoError(t, os.WriteFile(path, nil, 0o600))

		store, err := storage.NewFileStore(path)
		require.NoError(t, err)

		value, err := store.GetItem(context.Background(), "key")
		require.NoError(t, err)
		assert.Empty(t, value)
	})
}

func TestWithDomainPrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := storage.NewMemoryStore()

	assert.Same(t, alfresco.CredentialStore(base), storage.WithDomainPrefix(base, ""))

	prefixed := storage.WithDomainPrefix(base, "tenant")
	exerciseStore(t, prefixed)

	value, err := base.GetItem(ctx, "tenant_ACS_USERNAME")
	require.NoError(t, err)
	assert.Equal(t, "admin", value)

	value, err = base.GetItem(ctx, "ACS_USERNAME")
	require.NoError(t, err)
	assert.Empty(t, value)
}

type fakeEntry struct {
	key   string
	value []byte
	rev   uint64
}

func (e *fakeEntry) Bucket() string             { return "credentials" }
func (e *fakeEntry) Key() string                { return e.key }
func (e *fakeEntry) Value() []byte              { return e.value }
func (e *fakeEntry) Revision() uint64           { return e.rev }
func (e *fakeEntry) Created() time.Time         { return time.Time{} }
func (e *fakeEntry) Delta() uint64              { return 0 }
func (e *fakeEntry) Operation() nats.KeyValueOp { return nats.KeyValuePut }

type fakeKeyValue struct {
	mutex sync.Mutex
	items map[string][]byte
	rev   uint64
}

func newFakeKeyValue() *fakeKeyValue {
	return &fakeKeyValue{items: make(map[string][]byte)}
}

func (kv *fakeKeyValue) Get(key string) (nats.KeyValueEntry, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	value, ok := kv.items[key]
	if !ok {
		return nil, nats.ErrKeyNotFound
	}

	return &fakeEntry{key: key, value: value, rev: kv.rev}, nil
}

func (kv *fakeKeyValue) PutString(key string, value string) (uint64, error) {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	kv.rev++
	kv.items[key] = []byte(value)

	return kv.rev, nil
}

func (kv *fakeKeyValue) Delete(key string, _ ...nats.DeleteOpt) error {
	kv.mutex.Lock()
	defer kv.mutex.Unlock()

	delete(kv.items, key)

	return nil
}

func TestNATSKVStore(t *testing.T) {
	t.Parallel()

	exerciseStore(t, storage.NewNATSKVStore(newFakeKeyValue()))
}

func TestConnectNATSKVStore_RequiresBucket(t *testing.T) {
	t.Parallel()

	_, _, err := storage.ConnectNATSKVStore(nil)
	require.ErrorIs(t, err, storage.ErrNATSBucketRequired)

	_, _, err = storage.ConnectNATSKVStore(&storage.NATSKVConfig{URL: nats.DefaultURL})
	require.ErrorIs(t, err, storage.ErrNATSBucketRequired)
}

func TestNATSKVStore_Live(t *testing.T) {
	t.Parallel()

	natsURL := os.Getenv("ALFRESCO_TEST_NATS_URL")
	if natsURL == "" {
		t.Skip("ALFRESCO_TEST_NATS_URL not set")
	}

	store, conn, err := storage.ConnectNATSKVStore(&storage.NATSKVConfig{
		URL:    natsURL,
		Bucket: "alfresco_test_credentials",
	})
	require.NoError(t, err)

	defer conn.Close()

	exerciseStore(t, store)
	require.NoError(t, store.RemoveItem(context.Background(), "ACS_USERNAME"))
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	addr := os.Getenv("ALFRESCO_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ALFRESCO_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() { _ = client.Close() }()

	store := storage.NewRedisStore(client, storage.RedisStoreOptions{
		KeyPrefix: "alfresco-test:" + t.Name() + ":",
		TTL:       time.Minute,
	})

	exerciseStore(t, store)
	require.NoError(t, store.RemoveItem(context.Background(), "ACS_USERNAME"))
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("nil config is memory", func(t *testing.T) {
		t.Parallel()

		store, closer, err := storage.NewStoreFromConfig(nil)
		require.NoError(t, err)
		assert.IsType(t, &storage.MemoryStore{}, store)
		require.NoError(t, closer())
	})

	t.Run("file", func(t *testing.T) {
		t.Parallel()

		store, closer, err := storage.NewStoreFromConfig(&storage.Config{
			Type:     storage.TypeFile,
			FilePath: filepath.Join(t.TempDir(), "credentials.yml"),
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.FileStore{}, store)
		require.NoError(t, closer())
	})

	t.Run("redis builds a lazy client", func(t *testing.T) {
		t.Parallel()

		store, closer, err := storage.NewStoreFromConfig(&storage.Config{
			Type:  storage.TypeRedis,
			Redis: &storage.RedisConfig{Addrs: []string{"127.0.0.1:6379"}},
		})
		require.NoError(t, err)
		assert.IsType(t, &storage.RedisStore{}, store)
		require.NoError(t, closer())
	})

	tests := []struct {
		name   string
		config *storage.Config
		err    error
	}{
		{"file without path", &storage.Config{Type: storage.TypeFile}, storage.ErrFileConfigRequired},
		{"redis without config", &storage.Config{Type: storage.TypeRedis}, storage.ErrRedisConfigRequired},
		{"redis without addrs", &storage.Config{Type: storage.TypeRedis, Redis: &storage.RedisConfig{}}, storage.ErrRedisConfigRequired},
		{"nats without config", &storage.Config{Type: storage.TypeNATS}, storage.ErrNATSConfigRequired},
		{"nats without bucket", &storage.Config{Type: storage.TypeNATS, NATS: &storage.NATSKVConfig{}}, storage.ErrNATSBucketRequired},
		{"unknown", &storage.Config{Type: "etcd"}, storage.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := storage.NewStoreFromConfig(tt.config)
			require.ErrorIs(t, err, tt.err)
		})
	}
}
