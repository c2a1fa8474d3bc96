package alfresco

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
)

// AuthType selects the authentication scheme of a session.
type AuthType string

const (
	// AuthTypeBasic authenticates with content repository and process engine tickets.
	AuthTypeBasic AuthType = "BASIC"

	// AuthTypeOAuth authenticates with an OAuth2 access token shared by both backends.
	AuthTypeOAuth AuthType = "OAUTH"
)

// Provider selects which backend(s) a session talks to.
type Provider string

const (
	// ProviderECM targets the content repository only.
	ProviderECM Provider = "ECM"

	// ProviderBPM targets the process engine only.
	ProviderBPM Provider = "BPM"

	// ProviderAll targets both backends with a joint login.
	ProviderAll Provider = "ALL"

	// ProviderOAuth is accepted for OAuth2 sessions that do not name a backend.
	ProviderOAuth Provider = "OAUTH"
)

// Is reports whether p names the same provider as other, ignoring case.
func (p Provider) Is(other Provider) bool {
	return strings.EqualFold(string(p), string(other))
}

// IncludesECM reports whether the provider covers the content repository.
func (p Provider) IncludesECM() bool {
	return p.Is(ProviderECM) || p.Is(ProviderAll)
}

// IncludesBPM reports whether the provider covers the process engine.
func (p Provider) IncludesBPM() bool {
	return p.Is(ProviderBPM) || p.Is(ProviderAll)
}

// OAuth2Config configures the OAuth2 strategy.
type OAuth2Config struct {
	// Host is the base URL of the identity provider realm, for example
	// "https://sso.example.com/auth/realms/alfresco/protocol/openid-connect".
	// The token, authorization and logout endpoints are derived from it
	// as Host+"/token", Host+"/auth" and Host+"/logout".
	Host string

	// ClientID and Secret identify the OAuth2 client. Secret may be empty
	// for public clients.
	ClientID string
	Secret   string

	// Scope is the space separated scope list requested on login.
	Scope string

	// ImplicitFlow switches the strategy to the browser based implicit grant.
	// Password logins and manual refreshes are not possible in this flow.
	ImplicitFlow bool

	// RedirectURI receives the implicit grant callback.
	RedirectURI string

	// RedirectURILogout is where the identity provider sends the user agent
	// after an implicit flow logout.
	RedirectURILogout string

	// RefreshTokenTimeout enables a background refresh of the access token at
	// this interval while authenticated. Zero disables it. Ignored in the
	// implicit flow.
	RefreshTokenTimeout time.Duration
}

// Config represents the configuration of an Alfresco session.
//
// # Mode selection
//
// AuthType and Provider together decide which authentication strategies the
// session builds:
//  1. AuthTypeOAuth: a single OAuth2 strategy shared by both backends.
//     OAuth2 must be set.
//  2. AuthTypeBasic with ProviderECM, ProviderBPM or ProviderAll: a content
//     repository ticket strategy and a process engine ticket strategy. Which
//     of them login and logout drive depends on Provider.
//  3. AuthTypeBasic with any other provider: ticket strategies exist but
//     login fails with ErrNoProvider.
//
// # Credential storage
//
// Tickets, tokens and usernames are written to Storage under fixed keys
// ("ticket-ECM", "ACS_USERNAME", "access_token", ...). When DomainPrefix is
// set every key is namespaced as "<prefix>_<key>" so several sessions can
// share one store. A nil Storage means an in-memory store.
//
// # Timeouts and retries
//
// Per-request timeouts should generally be controlled via the context passed
// to each operation. HTTPTimeout caps a single HTTP exchange. Resource calls
// are retried on 429 and 5xx responses according to RetryMax, RetryWaitMin
// and RetryWaitMax unless DisableRetry is set; authentication calls are never
// retried.
type Config struct {
	// HostEcm is the content repository base URL. Default "http://127.0.0.1:8080".
	HostEcm string

	// HostBpm is the process engine base URL. Default "http://127.0.0.1:9999".
	HostBpm string

	// AuthType selects ticket or OAuth2 authentication. Default AuthTypeBasic.
	AuthType AuthType

	// Provider selects the backend(s). Default ProviderECM. Compared case-insensitively.
	Provider Provider

	// ContextRoot is the content repository web application root. Default "alfresco".
	ContextRoot string

	// ContextRootBpm is the process engine web application root. Default "activiti-app".
	ContextRootBpm string

	// OAuth2 configures the OAuth2 strategy; required when AuthType is AuthTypeOAuth.
	OAuth2 *OAuth2Config

	// TicketEcm, TicketBpm and AccessToken hold credentials obtained
	// elsewhere. They are installed into the strategies on construction and
	// updated by the session after every successful login.
	TicketEcm   string
	TicketBpm   string
	AccessToken string

	// DisableCsrf stops the process engine strategy from sending CSRF tokens.
	DisableCsrf bool

	// DomainPrefix namespaces every credential store key.
	DomainPrefix string

	// Storage persists tickets, tokens and usernames. Nil means in-memory.
	Storage CredentialStore

	// Optional settings
	// Logger receives structured log entries. Nil disables logging.
	Logger Logger
	// Debug enables request/response logging in the HTTP layer.
	Debug bool
	// UserAgent overrides the User-Agent header.
	UserAgent string
	// HTTPTimeout caps a single HTTP exchange. Default 30s.
	HTTPTimeout time.Duration
	// RetryMax is the maximum number of retries for resource calls. Zero or
	// less means the default of 3; use DisableRetry to turn retries off.
	RetryMax int
	// DisableRetry sends every resource call exactly once.
	DisableRetry bool
	// RetryWaitMin and RetryWaitMax bound the backoff between retries.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// IsOAuth reports whether the configuration selects OAuth2 authentication.
func (c *Config) IsOAuth() bool {
	return strings.EqualFold(string(c.AuthType), string(AuthTypeOAuth))
}

// Normalize returns a copy of the configuration with defaults applied.
// The OAuth2 block is copied too so the result shares no mutable state with c.
func (c *Config) Normalize() *Config {
	normalized := *c

	normalized.HostEcm = strings.TrimSuffix(defaultString(c.HostEcm, constants.DefaultHostEcm), "/")
	normalized.HostBpm = strings.TrimSuffix(defaultString(c.HostBpm, constants.DefaultHostBpm), "/")
	normalized.AuthType = AuthType(strings.ToUpper(defaultString(string(c.AuthType), string(AuthTypeBasic))))
	normalized.Provider = Provider(defaultString(string(c.Provider), string(ProviderECM)))
	normalized.ContextRoot = strings.Trim(defaultString(c.ContextRoot, constants.DefaultContextRoot), "/")
	normalized.ContextRootBpm = strings.Trim(defaultString(c.ContextRootBpm, constants.DefaultContextRootBpm), "/")

	if c.OAuth2 != nil {
		oauth2 := *c.OAuth2
		oauth2.Host = strings.TrimSuffix(oauth2.Host, "/")
		normalized.OAuth2 = &oauth2
	}

	if normalized.HTTPTimeout <= 0 {
		normalized.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	if normalized.RetryMax <= 0 {
		normalized.RetryMax = constants.DefaultRetryMax
	}

	if normalized.RetryWaitMin <= 0 {
		normalized.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	if normalized.RetryWaitMax <= 0 {
		normalized.RetryWaitMax = constants.DefaultRetryWaitMax
	}

	if normalized.UserAgent == "" {
		normalized.UserAgent = constants.DefaultUserAgent
	}

	return &normalized
}

// Validate checks the settings that cannot be defaulted.
func (c *Config) Validate() error {
	if c.IsOAuth() && (c.OAuth2 == nil || c.OAuth2.Host == "") {
		return ErrMissingOAuth2Config
	}

	return nil
}

// EcmBaseURL returns the content repository root, "{hostEcm}/{contextRoot}".
func (c *Config) EcmBaseURL() string {
	return c.HostEcm + "/" + c.ContextRoot
}

// BpmBaseURL returns the process engine root, "{hostBpm}/{contextRootBpm}".
func (c *Config) BpmBaseURL() string {
	return c.HostBpm + "/" + c.ContextRootBpm
}

func defaultString(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

// envConfig mirrors Config for environment parsing.
type envConfig struct {
	HostEcm        string `env:"HOST_ECM"`
	HostBpm        string `env:"HOST_BPM"`
	AuthType       string `env:"AUTH_TYPE"`
	Provider       string `env:"PROVIDER"`
	ContextRoot    string `env:"CONTEXT_ROOT"`
	ContextRootBpm string `env:"CONTEXT_ROOT_BPM"`
	TicketEcm      string `env:"TICKET_ECM"`
	TicketBpm      string `env:"TICKET_BPM"`
	AccessToken    string `env:"ACCESS_TOKEN"`
	DisableCsrf    bool   `env:"DISABLE_CSRF"`
	DomainPrefix   string `env:"DOMAIN_PREFIX"`

	OAuth2Host                string        `env:"OAUTH2_HOST"`
	OAuth2ClientID            string        `env:"OAUTH2_CLIENT_ID"`
	OAuth2Secret              string        `env:"OAUTH2_SECRET"`
	OAuth2Scope               string        `env:"OAUTH2_SCOPE"`
	OAuth2ImplicitFlow        bool          `env:"OAUTH2_IMPLICIT_FLOW"`
	OAuth2RedirectURI         string        `env:"OAUTH2_REDIRECT_URI"`
	OAuth2RedirectURILogout   string        `env:"OAUTH2_REDIRECT_URI_LOGOUT"`
	OAuth2RefreshTokenTimeout time.Duration `env:"OAUTH2_REFRESH_TOKEN_TIMEOUT"`

	Debug        bool          `env:"DEBUG"`
	UserAgent    string        `env:"USER_AGENT"`
	HTTPTimeout  time.Duration `env:"HTTP_TIMEOUT"`
	RetryMax     int           `env:"RETRY_MAX"`
	DisableRetry bool          `env:"DISABLE_RETRY"`
	RetryWaitMin time.Duration `env:"RETRY_WAIT_MIN"`
	RetryWaitMax time.Duration `env:"RETRY_WAIT_MAX"`
}

// EnvPrefix is the prefix of every environment variable read by ConfigFromEnv.
const EnvPrefix = "ALFRESCO_"

// ConfigFromEnv builds a configuration from ALFRESCO_* environment variables,
// for example ALFRESCO_HOST_ECM, ALFRESCO_PROVIDER or ALFRESCO_OAUTH2_HOST.
// An OAuth2 block is only created when ALFRESCO_OAUTH2_HOST is set.
// The result is not normalized.
func ConfigFromEnv() (*Config, error) {
	return configFromEnvOptions(env.Options{Prefix: EnvPrefix})
}

func configFromEnvOptions(opts env.Options) (*Config, error) {
	parsed, err := env.ParseAsWithOptions[envConfig](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	config := &Config{
		HostEcm:        parsed.HostEcm,
		HostBpm:        parsed.HostBpm,
		AuthType:       AuthType(parsed.AuthType),
		Provider:       Provider(parsed.Provider),
		ContextRoot:    parsed.ContextRoot,
		ContextRootBpm: parsed.ContextRootBpm,
		TicketEcm:      parsed.TicketEcm,
		TicketBpm:      parsed.TicketBpm,
		AccessToken:    parsed.AccessToken,
		DisableCsrf:    parsed.DisableCsrf,
		DomainPrefix:   parsed.DomainPrefix,
		Debug:          parsed.Debug,
		UserAgent:      parsed.UserAgent,
		HTTPTimeout:    parsed.HTTPTimeout,
		RetryMax:       parsed.RetryMax,
		DisableRetry:   parsed.DisableRetry,
		RetryWaitMin:   parsed.RetryWaitMin,
		RetryWaitMax:   parsed.RetryWaitMax,
	}

	if parsed.OAuth2Host != "" {
		config.OAuth2 = &OAuth2Config{
			Host:                parsed.OAuth2Host,
			ClientID:            parsed.OAuth2ClientID,
			Secret:              parsed.OAuth2Secret,
			Scope:               parsed.OAuth2Scope,
			ImplicitFlow:        parsed.OAuth2ImplicitFlow,
			RedirectURI:         parsed.OAuth2RedirectURI,
			RedirectURILogout:   parsed.OAuth2RedirectURILogout,
			RefreshTokenTimeout: parsed.OAuth2RefreshTokenTimeout,
		}
	}

	return config, nil
}
