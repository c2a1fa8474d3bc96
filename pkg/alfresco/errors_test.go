package alfresco

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *APIError
		expected string
	}{
		{
			name:     "status only",
			err:      &APIError{StatusCode: 404},
			expected: "Not Found (status: 404)",
		},
		{
			name:     "with request",
			err:      &APIError{StatusCode: 401, Method: "POST", URL: "http://x/tickets", Message: "Login failed"},
			expected: "POST http://x/tickets: Login failed (status: 401)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestParseAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantKey     string
		wantMessage string
	}{
		{
			name:        "repository envelope",
			status:      403,
			body:        `{"error":{"errorKey":"Login failed","statusCode":403,"briefSummary":"05190001 Login failed"}}`,
			wantKey:     "Login failed",
			wantMessage: "05190001 Login failed",
		},
		{
			name:        "process engine envelope",
			status:      401,
			body:        `{"message":"Invalid credentials","messageKey":"GENERAL.ERROR.UNAUTHORIZED"}`,
			wantKey:     "GENERAL.ERROR.UNAUTHORIZED",
			wantMessage: "Invalid credentials",
		},
		{
			name:        "oauth2 envelope",
			status:      400,
			body:        `{"error":"invalid_grant","error_description":"Invalid user credentials"}`,
			wantKey:     "invalid_grant",
			wantMessage: "invalid_grant: Invalid user credentials",
		},
		{
			name:        "oauth2 envelope without description",
			status:      400,
			body:        `{"error":"invalid_grant"}`,
			wantKey:     "invalid_grant",
			wantMessage: "invalid_grant",
		},
		{
			name:   "not json",
			status: 502,
			body:   "<html>bad gateway</html>",
		},
		{
			name:   "empty body",
			status: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := ParseAPIError(tt.status, "GET", "http://x/y", []byte(tt.body))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantKey, apiErr.Key)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.body, string(apiErr.Body))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	unauthorized := fmt.Errorf("ecm login: %w", &APIError{StatusCode: 401})
	forbidden := fmt.Errorf("ecm login: %w", &APIError{StatusCode: 403})
	notFound := &APIError{StatusCode: 404}
	plain := errors.New("boom")

	assert.True(t, IsUnauthorized(unauthorized))
	assert.True(t, IsUnauthorized(fmt.Errorf("joint login: %w", ErrUnauthorized)))
	assert.False(t, IsUnauthorized(forbidden))
	assert.False(t, IsUnauthorized(plain))

	assert.True(t, IsForbidden(forbidden))
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(plain))

	assert.Equal(t, 401, StatusCode(unauthorized))
	assert.Equal(t, 0, StatusCode(plain))
}

func TestConfigurationErrors(t *testing.T) {
	t.Parallel()

	for _, err := range []error{
		ErrMissingOAuth2Config,
		ErrImplicitFlowRefresh,
		ErrImplicitFlowDisabled,
		ErrNoProvider,
		ErrNoTicketStrategy,
		ErrPasswordGrantImplicit,
	} {
		assert.True(t, IsConfigurationError(err), err.Error())
		assert.True(t, IsConfigurationError(fmt.Errorf("wrapped: %w", err)))
	}

	assert.False(t, IsConfigurationError(ErrUnauthorized))
	assert.Contains(t, ErrImplicitFlowRefresh.Error(), "manual refresh token not possible in implicit flow")
	assert.Contains(t, ErrMissingOAuth2Config.Error(), "missing the required oauth2 configuration")
}
