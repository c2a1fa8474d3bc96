package auth

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// BpmAuth authenticates against the process engine. Its ticket is the
// "Basic base64(user:password)" Authorization value accepted by the engine
// once the form login succeeded.
type BpmAuth struct {
	ticketSession

	client *http.Client

	csrfMutex   sync.Mutex
	disableCsrf bool
	csrfToken   string
}

// NewBpmAuth creates the process engine strategy for a normalized
// configuration and installs config.TicketBpm when set.
func NewBpmAuth(config *alfresco.Config, opts Options) *BpmAuth {
	auth := &BpmAuth{
		ticketSession: newTicketSession("bpm", constants.StorageKeyTicketBpm, constants.StorageKeyBpmUsername, opts),
		client:        opts.httpClient(config.BpmBaseURL()),
		disableCsrf:   config.DisableCsrf,
	}

	auth.restore(config.TicketBpm)

	return auth
}

// ChangeHost rebinds the strategy to the process engine root of config.
func (a *BpmAuth) ChangeHost(config *alfresco.Config) {
	a.client.SetBaseURL(config.BpmBaseURL())
}

// BaseURL returns the process engine root currently used.
func (a *BpmAuth) BaseURL() string {
	return a.client.BaseURL()
}

// ChangeCsrfConfig turns CSRF tokens off (true) or on (false).
func (a *BpmAuth) ChangeCsrfConfig(disable bool) {
	a.csrfMutex.Lock()
	defer a.csrfMutex.Unlock()

	a.disableCsrf = disable
}

// CsrfDisabled reports whether CSRF tokens are sent.
func (a *BpmAuth) CsrfDisabled() bool {
	a.csrfMutex.Lock()
	defer a.csrfMutex.Unlock()

	return a.disableCsrf
}

// Login posts the engine login form. On failure the previous state is kept
// and the transport error, carrying the HTTP status, is returned.
func (a *BpmAuth) Login(ctx context.Context, username, password string) (string, error) {
	username = trimUsername(username)

	req := &http.Request{
		Method: nethttp.MethodPost,
		Path:   constants.BpmAuthenticationPath,
		Form: url.Values{
			"j_username":                   []string{username},
			"j_password":                   []string{password},
			"_spring_security_remember_me": []string{"true"},
			"submit":                       []string{"Login"},
		},
	}
	a.applyCsrf(req)

	resp, err := a.client.Do(ctx, req)
	if resp != nil {
		a.captureCsrf(resp.Headers)
	}

	if err != nil {
		a.logFailure("login", err)

		return "", fmt.Errorf("posting login form: %w", err)
	}

	ticket := basicAuthorization(username, password)
	a.loginSucceeded(ctx, username, ticket)

	return ticket, nil
}

// Logout ends the engine session. Local state is cleared whatever the outcome.
func (a *BpmAuth) Logout(ctx context.Context) error {
	req := &http.Request{
		Method:  nethttp.MethodGet,
		Path:    constants.BpmLogoutPath,
		Headers: map[string]string{},
	}

	if ticket := a.Ticket(); ticket != "" {
		req.Headers["Authorization"] = ticket
	}

	a.applyCsrf(req)

	_, err := a.client.Do(ctx, req)

	a.clear(ctx)

	if err != nil {
		a.logFailure("logout", err)

		return fmt.Errorf("logging out: %w", err)
	}

	a.logger.Info("logout succeeded", map[string]interface{}{"strategy": a.name})

	return nil
}

// Authentication returns a binding that sends the live ticket as the
// Authorization header, plus the CSRF token unless disabled.
func (a *BpmAuth) Authentication() http.Authenticator {
	return http.AuthenticatorFunc(func(req *nethttp.Request) {
		ticket := a.Ticket()
		if ticket != "" {
			req.Header.Set("Authorization", ticket)
		}

		token, ok := a.currentCsrfToken()
		if !ok {
			return
		}

		req.Header.Set(constants.CsrfHeaderName, token)
		req.AddCookie(&nethttp.Cookie{Name: constants.CsrfCookieName, Value: token})
	})
}

// currentCsrfToken returns the token to send, creating one when none has
// been seen yet. ok is false when CSRF is disabled.
func (a *BpmAuth) currentCsrfToken() (string, bool) {
	a.csrfMutex.Lock()
	defer a.csrfMutex.Unlock()

	if a.disableCsrf {
		return "", false
	}

	if a.csrfToken == "" {
		a.csrfToken = uuid.NewString()
	}

	return a.csrfToken, true
}

func (a *BpmAuth) applyCsrf(req *http.Request) {
	token, ok := a.currentCsrfToken()
	if !ok {
		return
	}

	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}

	req.Headers[constants.CsrfHeaderName] = token
	req.Cookies = append(req.Cookies, &nethttp.Cookie{Name: constants.CsrfCookieName, Value: token})
}

// captureCsrf adopts a token handed out by the engine, from the CSRF cookie
// or header of a response.
func (a *BpmAuth) captureCsrf(headers nethttp.Header) {
	token := headers.Get(constants.CsrfHeaderName)

	for _, cookie := range (&nethttp.Response{Header: headers}).Cookies() {
		if cookie.Name == constants.CsrfCookieName && cookie.Value != "" {
			token = cookie.Value
		}
	}

	if token == "" {
		return
	}

	a.csrfMutex.Lock()
	a.csrfToken = token
	a.csrfMutex.Unlock()
}
