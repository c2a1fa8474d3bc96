// Package http is the transport shared by the authentication strategies and
// the resource clients. It wraps go-retryablehttp, applies the current
// credentials to every request and turns non-2xx answers into
// *alfresco.APIError values.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// Authenticator decorates an outgoing request with credentials.
type Authenticator interface {
	Authenticate(req *http.Request)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(req *http.Request)

// Authenticate implements Authenticator.
func (f AuthenticatorFunc) Authenticate(req *http.Request) {
	f(req)
}

// Client is an HTTP client bound to one base URL.
type Client struct {
	mutex         sync.RWMutex
	baseURL       string
	authenticator Authenticator

	httpClient   *retryablehttp.Client
	logger       alfresco.Logger
	debug        bool
	userAgent    string
	interceptors *alfresco.InterceptorChain
}

// Request describes a call relative to the client base URL.
// Form takes precedence over Body and is sent url-encoded.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Form    url.Values
	Headers map[string]string
	Cookies []*http.Cookie
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger alfresco.Logger) Option {
	return func(c *Client) {
		c.logger = alfresco.LoggerOrNoop(logger)
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the retry policy for 5xx and 429 answers.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithNoRetry disables retries. Authentication calls use it so that a
// rejected password is never replayed.
func WithNoRetry() Option {
	return func(c *Client) {
		c.httpClient.RetryMax = 0
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithAuthenticator sets the credential decorator.
func WithAuthenticator(authenticator Authenticator) Option {
	return func(c *Client) {
		c.authenticator = authenticator
	}
}

// WithInterceptors runs chain around every call.
func WithInterceptors(chain *alfresco.InterceptorChain) Option {
	return func(c *Client) {
		if chain != nil {
			c.interceptors = chain
		}
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, authenticator Authenticator, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		authenticator: authenticator,
		httpClient:    retryClient,
		logger:        alfresco.NoopLogger{},
		userAgent:     constants.DefaultUserAgent,
		interceptors:  alfresco.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.baseURL
}

// SetBaseURL rebinds the client to another base URL.
func (c *Client) SetBaseURL(baseURL string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.baseURL = strings.TrimSuffix(baseURL, "/")
}

// SetAuthenticator replaces the credential decorator. Nil sends requests
// without credentials.
func (c *Client) SetAuthenticator(authenticator Authenticator) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.authenticator = authenticator
}

// Interceptors returns the interceptor chain of the client.
func (c *Client) Interceptors() *alfresco.InterceptorChain {
	return c.interceptors
}

// StandardClient returns a *http.Client that retries like this client, for
// libraries that need one.
func (c *Client) StandardClient() *http.Client {
	return c.httpClient.StandardClient()
}

// Do executes req. For a non-2xx answer both the response and an
// *alfresco.APIError are returned.
//
//nolint:funlen,cyclop // Request building and response handling are kept in one place
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	c.mutex.RLock()
	baseURL := c.baseURL
	authenticator := c.authenticator
	c.mutex.RUnlock()

	fullURL := baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var (
		body        []byte
		contentType string
	)

	switch {
	case req.Form != nil:
		body = []byte(req.Form.Encode())
		contentType = "application/x-www-form-urlencoded"
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}

		body = data
		contentType = "application/json"
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	for _, cookie := range req.Cookies {
		httpReq.AddCookie(cookie)
	}

	if authenticator != nil {
		authenticator.Authenticate(httpReq.Request)
	}

	interceptReq := &alfresco.Request{
		Method:   req.Method,
		URL:      fullURL,
		Path:     req.Path,
		Headers:  httpReq.Header,
		Body:     body,
		Metadata: make(map[string]interface{}),
	}

	err = c.interceptors.ExecuteRequestInterceptors(ctx, interceptReq)
	if err != nil {
		return nil, err
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("executing request: %w", err)
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, &alfresco.Response{Error: err})

		return nil, err
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	response := &Response{
		StatusCode: httpResp.StatusCode,
		Body:       respBody,
		Headers:    httpResp.Header,
	}

	interceptResp := &alfresco.Response{
		StatusCode: response.StatusCode,
		Headers:    response.Headers,
		Body:       response.Body,
	}

	if response.StatusCode >= http.StatusBadRequest {
		apiErr := alfresco.ParseAPIError(response.StatusCode, req.Method, fullURL, respBody)
		interceptResp.Error = apiErr
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, interceptResp)

		return response, apiErr
	}

	err = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, interceptResp)
	if err != nil {
		return response, err
	}

	return response, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// PostForm performs a POST request with an url-encoded body.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Form:   form,
	})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPut,
		Path:   path,
		Body:   body,
	})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPatch,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
	})
}

// DeleteWithQuery performs a DELETE request with query parameters.
func (c *Client) DeleteWithQuery(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  query,
	})
}
