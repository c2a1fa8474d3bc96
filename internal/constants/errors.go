package constants

import "errors"

// CLI configuration errors.
var (
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrInvalidBoolean       = errors.New("value must be 'true' or 'false'")
	ErrUsernameRequired     = errors.New("username is required")
	ErrCallbackRequired     = errors.New("callback URL or fragment is required")
	ErrTicketRequired       = errors.New("at least one ticket is required")
	ErrInvalidOutputFormat  = errors.New("invalid output format")
	ErrInvalidStorageType   = errors.New("invalid credential storage type")
	ErrNotLoggedIn          = errors.New("not logged in. Use 'alfresco login' to authenticate first")
	ErrNoOAuth2Host         = errors.New("no OAuth2 host configured. Use 'alfresco config set oauth2_host <url>'")
	ErrSecretKeysNotAllowed = errors.New("secrets cannot be set via config command")
)
