// Package client holds the resource clients of the content repository and the
// process engine. A ResourceClient is an HTTP client bound to one API base
// path; the typed clients (nodes, groups, search, ...) issue calls through it.
package client

import (
	"sync"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// Backend names the server a resource client talks to.
type Backend string

const (
	// BackendECM is the content repository.
	BackendECM Backend = "ecm"

	// BackendBPM is the process engine.
	BackendBPM Backend = "bpm"
)

// Resource client names, used as event sources.
const (
	NameEcmPublic  = "ecm"
	NameEcmPrivate = "ecm-private"
	NameSearch     = "search"
	NameDiscovery  = "discovery"
	NameGs         = "gs"
	NameBpm        = "bpm"
)

// ErrorObserver is notified once for every failed call.
type ErrorObserver func(err error, statusCode int)

// ResourceClient is an HTTP client for one API base path of one backend.
type ResourceClient struct {
	mutex     sync.RWMutex
	name      string
	backend   Backend
	basePath  string
	observers []ErrorObserver

	httpClient *http.Client
}

// NewResourceClient creates a resource client for basePath, relative to the
// root of backend as derived from config.
func NewResourceClient(name string, backend Backend, basePath string, config *alfresco.Config) *ResourceClient {
	client := &ResourceClient{
		name:     name,
		backend:  backend,
		basePath: basePath,
	}

	interceptors := alfresco.NewInterceptorChain()
	interceptors.AddResponseInterceptor(alfresco.ErrorObserverInterceptor(client.notify))

	client.httpClient = http.NewClient(client.rootURL(config), nil, HTTPOptions(config, interceptors)...)

	return client
}

// HTTPOptions derives the transport options of a resource client from config.
func HTTPOptions(config *alfresco.Config, interceptors *alfresco.InterceptorChain) []http.Option {
	opts := []http.Option{
		http.WithLogger(alfresco.LoggerOrNoop(config.Logger)),
		http.WithDebug(config.Debug),
		http.WithUserAgent(config.UserAgent),
		http.WithRetryConfig(config.RetryMax, config.RetryWaitMin, config.RetryWaitMax),
		http.WithInterceptors(interceptors),
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.DisableRetry {
		opts = append(opts, http.WithNoRetry())
	}

	return opts
}

// Name returns the client name.
func (c *ResourceClient) Name() string {
	return c.name
}

// Backend returns the backend the client talks to.
func (c *ResourceClient) Backend() Backend {
	return c.backend
}

// BaseURL returns the absolute base URL calls are made against.
func (c *ResourceClient) BaseURL() string {
	return c.httpClient.BaseURL()
}

// HTTPClient returns the underlying transport.
func (c *ResourceClient) HTTPClient() *http.Client {
	return c.httpClient
}

// SetAuthentication binds the credentials applied to every call.
func (c *ResourceClient) SetAuthentication(authentication http.Authenticator) {
	c.httpClient.SetAuthenticator(authentication)
}

// ChangeHost re-derives the base URL from config.
func (c *ResourceClient) ChangeHost(config *alfresco.Config) {
	c.httpClient.SetBaseURL(c.rootURL(config))
}

// OnError subscribes observer to failed calls.
func (c *ResourceClient) OnError(observer ErrorObserver) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.observers = append(c.observers, observer)
}

func (c *ResourceClient) notify(err error, statusCode int) {
	c.mutex.RLock()
	observers := make([]ErrorObserver, len(c.observers))
	copy(observers, c.observers)
	c.mutex.RUnlock()

	for _, observer := range observers {
		observer(err, statusCode)
	}
}

func (c *ResourceClient) rootURL(config *alfresco.Config) string {
	if c.backend == BackendBPM {
		return config.BpmBaseURL() + c.basePath
	}

	return config.EcmBaseURL() + c.basePath
}

// Set is the group of resource clients a session owns.
type Set struct {
	EcmPublic  *ResourceClient
	EcmPrivate *ResourceClient
	Search     *ResourceClient
	Discovery  *ResourceClient
	Gs         *ResourceClient
	Bpm        *ResourceClient
}

// NewSet builds every resource client for config.
func NewSet(config *alfresco.Config) *Set {
	return &Set{
		EcmPublic:  NewResourceClient(NameEcmPublic, BackendECM, constants.EcmPublicBasePath, config),
		EcmPrivate: NewResourceClient(NameEcmPrivate, BackendECM, constants.EcmPrivateBasePath, config),
		Search:     NewResourceClient(NameSearch, BackendECM, constants.SearchBasePath, config),
		Discovery:  NewResourceClient(NameDiscovery, BackendECM, constants.DiscoveryBasePath, config),
		Gs:         NewResourceClient(NameGs, BackendECM, constants.GsBasePath, config),
		Bpm:        NewResourceClient(NameBpm, BackendBPM, constants.BpmAPIBasePath, config),
	}
}

// All returns every client of the set.
func (s *Set) All() []*ResourceClient {
	return []*ResourceClient{s.EcmPublic, s.EcmPrivate, s.Search, s.Discovery, s.Gs, s.Bpm}
}

// Ecm returns the clients bound to the content repository.
func (s *Set) Ecm() []*ResourceClient {
	return []*ResourceClient{s.EcmPublic, s.EcmPrivate, s.Search, s.Discovery, s.Gs}
}

// SetEcmAuthentication binds authentication into the content repository clients.
func (s *Set) SetEcmAuthentication(authentication http.Authenticator) {
	for _, client := range s.Ecm() {
		client.SetAuthentication(authentication)
	}
}

// SetBpmAuthentication binds authentication into the process engine client.
func (s *Set) SetBpmAuthentication(authentication http.Authenticator) {
	s.Bpm.SetAuthentication(authentication)
}

// ChangeEcmHost rebinds the content repository clients to config.
func (s *Set) ChangeEcmHost(config *alfresco.Config) {
	for _, client := range s.Ecm() {
		client.ChangeHost(config)
	}
}

// ChangeBpmHost rebinds the process engine client to config.
func (s *Set) ChangeBpmHost(config *alfresco.Config) {
	s.Bpm.ChangeHost(config)
}
