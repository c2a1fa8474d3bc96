package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfrescoapi"
	"github.com/fivetwenty-io/alfresco-client/pkg/storage"
)

// session is an API bound to the configured credential store.
type session struct {
	*alfrescoapi.API

	closeStore storage.Closer
}

// openSession builds the API from the settings. Tickets and tokens persisted
// by earlier commands are picked up from the credential store.
func (e *environment) openSession() (*session, error) {
	storeConfig, err := e.storeConfig()
	if err != nil {
		return nil, err
	}

	store, closeStore, err := storage.NewStoreFromConfig(storeConfig)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}

	config := e.sessionConfig()
	config.Storage = store

	if e.verbose() {
		config.Logger = alfresco.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
		config.Debug = true
	}

	api, err := alfrescoapi.New(config)
	if err != nil {
		_ = closeStore()

		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &session{API: api, closeStore: closeStore}, nil
}

// Close releases the API and the credential store.
func (s *session) Close() error {
	s.API.Close()

	if err := s.closeStore(); err != nil {
		return fmt.Errorf("closing credential store: %w", err)
	}

	return nil
}
