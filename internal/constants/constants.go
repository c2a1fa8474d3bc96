package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and credential files.
	ConfigFilePerm = 0600
)

// Configuration defaults.
const (
	// DefaultHostEcm is the content repository host used when none is configured.
	DefaultHostEcm = "http://127.0.0.1:8080"

	// DefaultHostBpm is the process engine host used when none is configured.
	DefaultHostBpm = "http://127.0.0.1:9999"

	// DefaultContextRoot is the content repository web application root.
	DefaultContextRoot = "alfresco"

	// DefaultContextRootBpm is the process engine web application root.
	DefaultContextRootBpm = "activiti-app"

	// DefaultUserAgent identifies the SDK on outgoing requests.
	DefaultUserAgent = "alfresco-client-go"
)

// Content repository API base paths, relative to {hostEcm}/{contextRoot}.
const (
	EcmPrivateBasePath   = "/api/-default-/private/alfresco/versions/1"
	EcmPublicBasePath    = "/api/-default-/public/alfresco/versions/1"
	SearchBasePath       = "/api/-default-/public/search/versions/1"
	DiscoveryBasePath    = "/api"
	GsBasePath           = "/api/-default-/public/gs/versions/1"
	AuthenticationPath   = "/api/-default-/public/authentication/versions/1"
	TicketsPath          = "/tickets"
	CurrentTicketPath    = "/tickets/-me-"
	ContentServiceSuffix = "/service"
)

// Process engine paths, relative to {hostBpm}/{contextRootBpm}.
const (
	BpmAPIBasePath        = "/api"
	BpmAuthenticationPath = "/app/authentication"
	BpmLogoutPath         = "/app/logout"
)

// OAuth2 endpoint suffixes, relative to the configured OAuth2 host.
const (
	OAuth2TokenPath  = "/token"
	OAuth2AuthPath   = "/auth"
	OAuth2LogoutPath = "/logout"
)

// CSRF header and cookie names expected by the process engine.
const (
	CsrfHeaderName = "X-CSRF-TOKEN"
	CsrfCookieName = "CSRF-TOKEN"
)

// Credential store keys.
const (
	StorageKeyEcmUsername   = "ACS_USERNAME"
	StorageKeyBpmUsername   = "APS_USERNAME"
	StorageKeyUsername      = "USERNAME"
	StorageKeyTicketEcm     = "ticket-ECM"
	StorageKeyTicketBpm     = "ticket-BPM"
	StorageKeyAccessToken   = "access_token"
	StorageKeyRefreshToken  = "refresh_token"
	StorageKeyIDToken       = "id_token"
	StorageKeyExpiresAt     = "expires_at"
	StorageKeyImplicitNonce = "nonce"
	StorageKeyImplicitState = "state"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second

	// StoreOperationTimeout bounds a single remote credential store call.
	StoreOperationTimeout = 5 * time.Second
)

// Retry limits.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 30 * time.Second
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate active sessions.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// MaskVisibleChars is how many leading characters of a secret stay visible.
	MaskVisibleChars = 4
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)

// Validation and limits.
const (
	// MinimumArgumentCount is the argument count for KEY VALUE commands.
	MinimumArgumentCount = 2
)
