package alfresco

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents a non-2xx response from an Alfresco backend or from the
// OAuth2 identity provider.
type APIError struct {
	StatusCode int    `json:"statusCode"             yaml:"status_code"`
	Method     string `json:"method,omitempty"       yaml:"method,omitempty"`
	URL        string `json:"url,omitempty"          yaml:"url,omitempty"`
	Key        string `json:"errorKey,omitempty"     yaml:"error_key,omitempty"`
	Message    string `json:"briefSummary,omitempty" yaml:"message,omitempty"`
	Body       []byte `json:"-"                      yaml:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}

	if e.Method != "" && e.URL != "" {
		return fmt.Sprintf("%s %s: %s (status: %d)", e.Method, e.URL, message, e.StatusCode)
	}

	return fmt.Sprintf("%s (status: %d)", message, e.StatusCode)
}

// repositoryErrorBody is the error envelope of the content repository REST API.
type repositoryErrorBody struct {
	ErrorKey     string `json:"errorKey"`
	StatusCode   int    `json:"statusCode"`
	BriefSummary string `json:"briefSummary"`
}

// errorEnvelope covers the three error shapes seen in practice:
// {"error":{...}} from the content repository, {"message","messageKey"} from
// the process engine and {"error":"...","error_description":"..."} from OAuth2.
type errorEnvelope struct {
	Error            json.RawMessage `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Message          string          `json:"message"`
	MessageKey       string          `json:"messageKey"`
}

// ParseAPIError builds an APIError from a response status and body.
// Bodies that are not JSON are kept verbatim in Body.
func ParseAPIError(statusCode int, method, url string, body []byte) *APIError {
	apiErr := &APIError{
		StatusCode: statusCode,
		Method:     method,
		URL:        url,
		Body:       body,
	}

	var envelope errorEnvelope
	if len(body) == 0 || json.Unmarshal(body, &envelope) != nil {
		return apiErr
	}

	switch {
	case len(envelope.Error) > 0 && envelope.Error[0] == '{':
		var repoErr repositoryErrorBody
		if json.Unmarshal(envelope.Error, &repoErr) == nil {
			apiErr.Key = repoErr.ErrorKey
			apiErr.Message = repoErr.BriefSummary
		}
	case len(envelope.Error) > 0 && envelope.Error[0] == '"':
		var code string
		if json.Unmarshal(envelope.Error, &code) == nil {
			apiErr.Key = code
			apiErr.Message = strings.TrimSuffix(code+": "+envelope.ErrorDescription, ": ")
		}
	default:
		apiErr.Key = envelope.MessageKey
		apiErr.Message = envelope.Message
	}

	return apiErr
}

// Configuration errors. Each wraps ErrConfiguration.
var (
	ErrConfiguration         = errors.New("configuration error")
	ErrMissingOAuth2Config   = fmt.Errorf("%w: missing the required oauth2 configuration", ErrConfiguration)
	ErrImplicitFlowRefresh   = fmt.Errorf("%w: manual refresh token not possible in implicit flow", ErrConfiguration)
	ErrImplicitFlowDisabled  = fmt.Errorf("%w: implicit flow is not enabled in the oauth2 configuration", ErrConfiguration)
	ErrNoProvider            = fmt.Errorf("%w: no provider configured for this operation", ErrConfiguration)
	ErrNoTicketStrategy      = fmt.Errorf("%w: ticket authentication is not available with oauth2", ErrConfiguration)
	ErrPasswordGrantImplicit = fmt.Errorf("%w: password login not possible in implicit flow", ErrConfiguration)
)

// Session errors.
var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNoRefreshToken        = errors.New("no refresh token available")
	ErrNoImplicitLogin       = errors.New("no implicit login in progress")
	ErrImplicitStateMismatch = errors.New("implicit login state does not match")
	ErrImplicitNonceMismatch = errors.New("implicit login nonce does not match")
	ErrImplicitNoAccessToken = errors.New("implicit login callback carries no access token")
	ErrImplicitCallbackError = errors.New("identity provider returned an error")
	ErrLoginInProgress       = errors.New("login already in progress")
	ErrMissingParameter      = errors.New("missing required parameter")
	ErrConfigRequired        = errors.New("config is required")
)

// StatusCode returns the HTTP status carried by err, or 0 when there is none.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}

	return 0
}

// IsUnauthorized checks if the error is an authentication rejection (HTTP 401).
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsConfigurationError checks if the error reports an operation invoked in a
// mode that does not support it.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
