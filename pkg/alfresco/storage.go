package alfresco

import "context"

// CredentialStore persists tickets, tokens and usernames outside the session.
// Implementations must be safe for concurrent use. GetItem returns an empty
// string and a nil error for keys that are not present.
type CredentialStore interface {
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
