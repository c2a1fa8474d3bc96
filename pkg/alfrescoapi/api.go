package alfrescoapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/fivetwenty-io/alfresco-client/internal/auth"
	"github.com/fivetwenty-io/alfresco-client/internal/client"
	internalhttp "github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/storage"
)

// API is an Alfresco session: one configuration, the authentication
// strategies it selects and the resource clients bound to them.
// It is safe for concurrent use.
type API struct {
	mutex   sync.RWMutex
	config  *alfresco.Config
	store   alfresco.CredentialStore
	mode    sessionMode
	clients *client.Set
	logger  alfresco.Logger
	events  alfresco.Emitter

	nodes        *client.NodesClient
	associations *client.AssociationsClient
	groups       *client.GroupsClient
	discovery    *client.DiscoveryClient
	search       *client.SearchClient
	profile      *client.ProfileClient
	content      *client.ContentClient
}

// Option configures an API at construction.
type Option func(*API)

// WithEventHandler subscribes handler to name before the first Configure, so
// events emitted while restoring a stored session are not missed.
func WithEventHandler(name alfresco.EventName, handler alfresco.EventHandler) Option {
	return func(a *API) {
		a.events.On(name, handler)
	}
}

// New creates a session for config. The configuration is copied; later
// changes to config have no effect.
func New(config *alfresco.Config, opts ...Option) (*API, error) {
	api := &API{}

	for _, opt := range opts {
		opt(api)
	}

	err := api.Configure(config)
	if err != nil {
		return nil, err
	}

	return api, nil
}

// Configure replaces the configuration and rebuilds the credential store,
// the strategies and the resource clients. Event subscriptions are kept.
func (a *API) Configure(config *alfresco.Config) error {
	if config == nil {
		return alfresco.ErrConfigRequired
	}

	normalized := config.Normalize()

	err := normalized.Validate()
	if err != nil {
		return fmt.Errorf("validating configuration: %w", err)
	}

	logger := alfresco.LoggerOrNoop(normalized.Logger)

	var store alfresco.CredentialStore = storage.NewMemoryStore()
	if normalized.Storage != nil {
		store = normalized.Storage
	}

	store = storage.WithDomainPrefix(store, normalized.DomainPrefix)

	clients := client.NewSet(normalized)
	for _, resourceClient := range clients.All() {
		resourceClient.OnError(a.clientErrorObserver(resourceClient.Name()))
	}

	mode, err := selectMode(normalized, auth.Options{
		Store:       store,
		Logger:      logger,
		HTTPOptions: authHTTPOptions(normalized),
	})
	if err != nil {
		return fmt.Errorf("creating authentication: %w", err)
	}

	bindAuthentications(mode, clients)

	if m, ok := mode.(*oauthMode); ok {
		m.oauth.SetRefreshHook(a.tokenRefreshed)
	}

	a.mutex.Lock()
	previous := a.mode
	a.config = normalized
	a.store = store
	a.mode = mode
	a.clients = clients
	a.logger = logger
	a.nodes = client.NewNodesClient(clients.EcmPublic.HTTPClient())
	a.associations = client.NewAssociationsClient(clients.EcmPublic.HTTPClient())
	a.groups = client.NewGroupsClient(clients.EcmPublic.HTTPClient())
	a.discovery = client.NewDiscoveryClient(clients.Discovery.HTTPClient())
	a.search = client.NewSearchClient(clients.Search.HTTPClient())
	a.profile = client.NewProfileClient(clients.Bpm.HTTPClient())
	a.content = client.NewContentClient(clients.EcmPublic.BaseURL, a.GetTicketEcm)
	a.mutex.Unlock()

	closeMode(previous)

	logger.Debug("session configured", map[string]interface{}{
		"mode":     mode.name(),
		"host_ecm": normalized.HostEcm,
		"host_bpm": normalized.HostBpm,
	})

	return nil
}

func authHTTPOptions(config *alfresco.Config) []internalhttp.Option {
	opts := []internalhttp.Option{
		internalhttp.WithDebug(config.Debug),
		internalhttp.WithUserAgent(config.UserAgent),
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, internalhttp.WithTimeout(config.HTTPTimeout))
	}

	return opts
}

// bindAuthentications hands each resource client the binding of the strategy
// that serves its backend.
func bindAuthentications(mode sessionMode, clients *client.Set) {
	if m, ok := mode.(*oauthMode); ok {
		for _, resourceClient := range clients.All() {
			resourceClient.SetAuthentication(m.oauth.Authentication())
		}

		return
	}

	if strategies, ok := tickets(mode); ok {
		clients.SetEcmAuthentication(strategies.ecm.Authentication())
		clients.SetBpmAuthentication(strategies.bpm.Authentication())
	}
}

func closeMode(mode sessionMode) {
	if m, ok := mode.(*oauthMode); ok {
		m.oauth.Close()
	}
}

// Close stops background work. The session stays usable.
func (a *API) Close() {
	closeMode(a.currentMode())
}

// Config returns a copy of the current configuration.
func (a *API) Config() alfresco.Config {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	config := *a.config
	if a.config.OAuth2 != nil {
		oauth2 := *a.config.OAuth2
		config.OAuth2 = &oauth2
	}

	return config
}

// Store returns the credential store of the session, domain prefix applied.
func (a *API) Store() alfresco.CredentialStore {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.store
}

// On subscribes handler to name. The returned function unsubscribes it.
func (a *API) On(name alfresco.EventName, handler alfresco.EventHandler) func() {
	return a.events.On(name, handler)
}

// Once subscribes handler to the next occurrence of name.
func (a *API) Once(name alfresco.EventName, handler alfresco.EventHandler) func() {
	return a.events.Once(name, handler)
}

// IsLoggedIn reports whether the session of the configured mode is
// authenticated. In ALL mode both backends must be.
func (a *API) IsLoggedIn() bool {
	switch m := a.currentMode().(type) {
	case *oauthMode:
		return m.oauth.IsLoggedIn()
	case *ecmMode:
		return m.ecm.IsLoggedIn()
	case *bpmMode:
		return m.bpm.IsLoggedIn()
	case *dualMode:
		return m.ecm.IsLoggedIn() && m.bpm.IsLoggedIn()
	default:
		return false
	}
}

// IsEcmLoggedIn reports whether the content repository session is
// authenticated. It is false when the provider does not cover the content
// repository.
func (a *API) IsEcmLoggedIn() bool {
	switch m := a.currentMode().(type) {
	case *oauthMode:
		return m.provider.IncludesECM() && m.oauth.IsLoggedIn()
	case *ecmMode:
		return m.ecm.IsLoggedIn()
	case *dualMode:
		return m.ecm.IsLoggedIn()
	default:
		return false
	}
}

// IsBpmLoggedIn reports whether the process engine session is authenticated.
// It is false when the provider does not cover the process engine.
func (a *API) IsBpmLoggedIn() bool {
	switch m := a.currentMode().(type) {
	case *oauthMode:
		return m.provider.IncludesBPM() && m.oauth.IsLoggedIn()
	case *bpmMode:
		return m.bpm.IsLoggedIn()
	case *dualMode:
		return m.bpm.IsLoggedIn()
	default:
		return false
	}
}

// GetEcmUsername returns the user of the content repository session, or "".
func (a *API) GetEcmUsername(ctx context.Context) string {
	mode := a.currentMode()
	if m, ok := mode.(*oauthMode); ok {
		return m.oauth.Username(ctx)
	}

	if strategies, ok := tickets(mode); ok {
		return strategies.ecm.Username(ctx)
	}

	return ""
}

// GetBpmUsername returns the user of the process engine session, or "".
func (a *API) GetBpmUsername(ctx context.Context) string {
	mode := a.currentMode()
	if m, ok := mode.(*oauthMode); ok {
		return m.oauth.Username(ctx)
	}

	if strategies, ok := tickets(mode); ok {
		return strategies.bpm.Username(ctx)
	}

	return ""
}

// GetTicketAuth returns the OAuth2 access token, or "" outside OAuth2 mode.
func (a *API) GetTicketAuth() string {
	if m, ok := a.currentMode().(*oauthMode); ok {
		return m.oauth.Token()
	}

	return ""
}

// GetTicketEcm returns the content repository ticket, or "".
func (a *API) GetTicketEcm() string {
	if strategies, ok := tickets(a.currentMode()); ok {
		return strategies.ecm.Ticket()
	}

	return ""
}

// GetTicketBpm returns the process engine ticket, or "".
func (a *API) GetTicketBpm() string {
	if strategies, ok := tickets(a.currentMode()); ok {
		return strategies.bpm.Ticket()
	}

	return ""
}

// GetTicket returns the content repository and process engine tickets.
func (a *API) GetTicket() [2]string {
	return [2]string{a.GetTicketEcm(), a.GetTicketBpm()}
}

// SetTicket installs tickets obtained elsewhere into the ticket strategies.
// It does nothing in OAuth2 mode.
func (a *API) SetTicket(ticketEcm, ticketBpm string) {
	if strategies, ok := tickets(a.currentMode()); ok {
		strategies.ecm.SetTicket(ticketEcm)
		strategies.bpm.SetTicket(ticketBpm)
	}
}

// InvalidateSession drops the credentials of every strategy without
// contacting the servers. Stored credentials are kept; a 401 answer from a
// resource call removes them as well.
func (a *API) InvalidateSession() {
	mode := a.currentMode()
	if m, ok := mode.(*oauthMode); ok {
		m.oauth.InvalidateSession()

		return
	}

	if strategies, ok := tickets(mode); ok {
		strategies.ecm.InvalidateSession()
		strategies.bpm.InvalidateSession()
	}
}

// forgetSession invalidates the session and removes its credentials from
// the store and the configuration. A rejected credential is never restored.
func (a *API) forgetSession(ctx context.Context) {
	switch m := a.currentMode().(type) {
	case *oauthMode:
		m.oauth.Forget(ctx)
		a.updateConfig(func(config *alfresco.Config) { config.AccessToken = "" })
	default:
		strategies, ok := tickets(m)
		if !ok {
			return
		}

		strategies.ecm.Forget(ctx)
		strategies.bpm.Forget(ctx)
		a.updateConfig(func(config *alfresco.Config) {
			config.TicketEcm = ""
			config.TicketBpm = ""
		})
	}
}

// ChangeEcmHost points the content repository strategy and clients at host.
func (a *API) ChangeEcmHost(host string) {
	config := a.updateConfig(func(config *alfresco.Config) {
		config.HostEcm = strings.TrimSuffix(host, "/")
	})

	a.mutex.RLock()
	mode, clients := a.mode, a.clients
	a.mutex.RUnlock()

	if strategies, ok := tickets(mode); ok {
		strategies.ecm.ChangeHost(config)
	}

	clients.ChangeEcmHost(config)
}

// ChangeBpmHost points the process engine strategy and client at host.
func (a *API) ChangeBpmHost(host string) {
	config := a.updateConfig(func(config *alfresco.Config) {
		config.HostBpm = strings.TrimSuffix(host, "/")
	})

	a.mutex.RLock()
	mode, clients := a.mode, a.clients
	a.mutex.RUnlock()

	if strategies, ok := tickets(mode); ok {
		strategies.bpm.ChangeHost(config)
	}

	clients.ChangeBpmHost(config)
}

// ChangeCsrfConfig switches the CSRF token of process engine logins off
// (disable true) or on.
func (a *API) ChangeCsrfConfig(disable bool) {
	a.updateConfig(func(config *alfresco.Config) {
		config.DisableCsrf = disable
	})

	if strategies, ok := tickets(a.currentMode()); ok {
		strategies.bpm.ChangeCsrfConfig(disable)
	}
}

// Nodes returns the nodes API of the content repository.
func (a *API) Nodes() alfresco.NodesClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.nodes
}

// Associations returns the peer associations API of the content repository.
func (a *API) Associations() alfresco.AssociationsClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.associations
}

// Groups returns the groups API of the content repository.
func (a *API) Groups() alfresco.GroupsClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.groups
}

// Discovery returns the discovery API of the content repository.
func (a *API) Discovery() alfresco.DiscoveryClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.discovery
}

// Search returns the search API of the content repository.
func (a *API) Search() alfresco.SearchClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.search
}

// Profile returns the profile API of the process engine.
func (a *API) Profile() alfresco.ProfileClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.profile
}

// Content returns the content URL builder.
func (a *API) Content() alfresco.ContentClient {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.content
}

// EcmBaseURL returns the base URL of the public content repository API.
func (a *API) EcmBaseURL() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.clients.EcmPublic.BaseURL()
}

// BpmBaseURL returns the base URL of the process engine API.
func (a *API) BpmBaseURL() string {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.clients.Bpm.BaseURL()
}

func (a *API) currentLogger() alfresco.Logger {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.logger
}

func (a *API) currentMode() sessionMode {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.mode
}

// updateConfig applies fn to a copy of the configuration, stores it and
// returns it.
func (a *API) updateConfig(fn func(config *alfresco.Config)) *alfresco.Config {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	config := *a.config
	fn(&config)
	a.config = config.Normalize()

	return a.config
}

// clientErrorObserver drops the rejected credentials on 401 and always
// forwards the failure to subscribers.
func (a *API) clientErrorObserver(source string) client.ErrorObserver {
	return func(err error, statusCode int) {
		if statusCode == http.StatusUnauthorized {
			a.forgetSession(context.Background())
		}

		a.events.Emit(alfresco.Event{
			Name:       alfresco.EventError,
			Source:     source,
			StatusCode: statusCode,
			Err:        err,
		})
	}
}

func (a *API) tokenRefreshed(accessToken string) {
	a.updateConfig(func(config *alfresco.Config) {
		config.AccessToken = accessToken
	})

	a.events.Emit(alfresco.Event{Name: alfresco.EventTokenRefreshed, Source: "oauth2"})
}
