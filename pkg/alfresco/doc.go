// Package alfresco defines the public types shared by the Alfresco client SDK:
// configuration, errors, events, the credential store contract, the request
// interceptor chain, resource models and the resource client interfaces.
//
// Most applications construct a session through pkg/alfrescoapi and only use
// this package for configuration values and for the types returned by the
// resource clients.
//
// # Configuration
//
// A Config selects how the session authenticates. AuthType picks between
// ticket based authentication (AuthTypeBasic) and OAuth2 (AuthTypeOAuth).
// Provider picks which backend(s) the session talks to: ProviderECM for the
// content repository, ProviderBPM for the process engine, or ProviderAll for
// both at once. Unset fields are filled by Config.Normalize:
//
//	cfg := (&alfresco.Config{
//	  HostEcm:  "https://acs.example.com",
//	  Provider: alfresco.ProviderECM,
//	}).Normalize()
//
// Configuration can also be read from ALFRESCO_* environment variables with
// ConfigFromEnv.
//
// # Errors
//
// Transport failures surface as *APIError values carrying the HTTP status.
// Use IsUnauthorized, IsForbidden, IsNotFound or StatusCode to inspect them.
// Operations invoked in a mode that does not support them fail with an error
// wrapping ErrConfiguration; check with IsConfigurationError.
//
// # Events
//
// An Emitter delivers session events (EventError, EventUnauthorized,
// EventLogin, EventLogout, EventTokenRefreshed) to subscribers registered
// with On or Once.
package alfresco
