package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store down")

type mockStore struct {
	mock.Mock
}

func (m *mockStore) GetItem(ctx context.Context, key string) (string, error) {
	args := m.Called(key)

	return args.String(0), args.Error(1)
}

func (m *mockStore) SetItem(ctx context.Context, key, value string) error {
	return m.Called(key, value).Error(0)
}

func (m *mockStore) RemoveItem(ctx context.Context, key string) error {
	return m.Called(key).Error(0)
}

type warnLogger struct {
	warnings []string
}

func (l *warnLogger) Debug(string, map[string]interface{}) {}
func (l *warnLogger) Info(string, map[string]interface{})  {}
func (l *warnLogger) Error(string, map[string]interface{}) {}

func (l *warnLogger) Warn(msg string, fields map[string]interface{}) {
	l.warnings = append(l.warnings, msg+" "+fields["key"].(string))
}

func TestCredentialPersister(t *testing.T) {
	t.Parallel()

	store := &mockStore{}
	store.On("SetItem", "ticket-ECM", "TICKET").Return(nil)
	store.On("SetItem", "expires_at", "2030-01-02T03:04:05Z").Return(nil)
	store.On("RemoveItem", "ticket-BPM").Return(nil)
	store.On("SetItem", "access_token", "token").Return(errStoreDown)
	store.On("GetItem", "USERNAME").Return("", errStoreDown)
	store.On("RemoveItem", "refresh_token").Return(errStoreDown)

	logger := &warnLogger{}
	persister := newCredentialPersister(store, logger)
	ctx := context.Background()

	persister.set(ctx, "ticket-ECM", "TICKET")
	persister.set(ctx, "ticket-BPM", "")
	persister.setTime(ctx, "expires_at", time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC))

	persister.set(ctx, "access_token", "token")
	assert.Empty(t, persister.get(ctx, "USERNAME"))
	persister.remove(ctx, "refresh_token")

	store.AssertExpectations(t)
	assert.Equal(t, []string{
		"failed to persist credential access_token",
		"failed to read credential USERNAME",
		"failed to remove credential refresh_token",
	}, logger.warnings)
}

func TestCredentialPersister_NoStore(t *testing.T) {
	t.Parallel()

	persister := newCredentialPersister(nil, nil)
	ctx := context.Background()

	persister.set(ctx, "ticket-ECM", "TICKET")
	persister.remove(ctx, "ticket-ECM")
	assert.Empty(t, persister.get(ctx, "ticket-ECM"))
}

func TestParseCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		callback string
		state    string
	}{
		{"full url with fragment", "http://app/callback#state=s1&access_token=a", "s1"},
		{"full url with query", "http://app/callback?state=s2", "s2"},
		{"bare fragment", "#state=s3", "s3"},
		{"bare query", "state=s4", "s4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			values, err := parseCallback(tt.callback)
			assert.NoError(t, err)
			assert.Equal(t, tt.state, values.Get("state"))
		})
	}
}
