package auth

import (
	"context"
	"time"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// credentialPersister mirrors session state into the credential store.
// Store failures are logged and never fail the session operation that
// triggered them; the in-memory state stays authoritative.
type credentialPersister struct {
	store  alfresco.CredentialStore
	logger alfresco.Logger
}

func newCredentialPersister(store alfresco.CredentialStore, logger alfresco.Logger) *credentialPersister {
	return &credentialPersister{
		store:  store,
		logger: alfresco.LoggerOrNoop(logger),
	}
}

func (p *credentialPersister) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithTimeout(context.WithoutCancel(ctx), constants.StoreOperationTimeout)
}

// set writes key. An empty value removes it.
func (p *credentialPersister) set(ctx context.Context, key, value string) {
	if p.store == nil {
		return
	}

	if value == "" {
		p.remove(ctx, key)

		return
	}

	ctx, cancel := p.storeContext(ctx)
	defer cancel()

	err := p.store.SetItem(ctx, key, value)
	if err != nil {
		p.logger.Warn("failed to persist credential", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func (p *credentialPersister) setTime(ctx context.Context, key string, value time.Time) {
	if value.IsZero() {
		p.remove(ctx, key)

		return
	}

	p.set(ctx, key, value.UTC().Format(time.RFC3339))
}

func (p *credentialPersister) get(ctx context.Context, key string) string {
	if p.store == nil {
		return ""
	}

	ctx, cancel := p.storeContext(ctx)
	defer cancel()

	value, err := p.store.GetItem(ctx, key)
	if err != nil {
		p.logger.Warn("failed to read credential", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})

		return ""
	}

	return value
}

func (p *credentialPersister) remove(ctx context.Context, keys ...string) {
	if p.store == nil {
		return
	}

	ctx, cancel := p.storeContext(ctx)
	defer cancel()

	for _, key := range keys {
		err := p.store.RemoveItem(ctx, key)
		if err != nil {
			p.logger.Warn("failed to remove credential", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
	}
}
