package auth

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// OAuth2State is the flow state of the OAuth2 strategy.
type OAuth2State string

const (
	StateUnauthenticated OAuth2State = "UNAUTHENTICATED"
	StateAuthenticating  OAuth2State = "AUTHENTICATING"
	StateAuthenticated   OAuth2State = "AUTHENTICATED"
	StateRefreshing      OAuth2State = "REFRESHING"
	StateImplicitPending OAuth2State = "IMPLICIT_PENDING"
)

// OAuth2Auth authenticates both backends with a bearer token issued by an
// OAuth2 identity provider.
//
// State transitions:
//
//	UNAUTHENTICATED --Login--> AUTHENTICATING --> AUTHENTICATED | UNAUTHENTICATED
//	AUTHENTICATING --Login--> ErrLoginInProgress
//	AUTHENTICATED --RefreshToken--> REFRESHING --> AUTHENTICATED | UNAUTHENTICATED
//	any --BeginImplicitLogin--> IMPLICIT_PENDING --CompleteImplicitLogin--> AUTHENTICATED | UNAUTHENTICATED
//	any --Logout / InvalidateSession--> UNAUTHENTICATED
type OAuth2Auth struct {
	mutex        sync.RWMutex
	state        OAuth2State
	pendingState string
	pendingNonce string
	onRefresh    func(accessToken string)

	tokens      *TokenStore
	config      alfresco.OAuth2Config
	oauthConfig *oauth2.Config
	client      *http.Client
	persister   *credentialPersister
	logger      alfresco.Logger

	refreshMutex sync.Mutex
	refreshStop  chan struct{}
}

// NewOAuth2Auth creates the OAuth2 strategy. config.OAuth2 must be set.
// config.AccessToken, or else a token persisted by an earlier session, is
// installed as the current token.
func NewOAuth2Auth(config *alfresco.Config, opts Options) (*OAuth2Auth, error) {
	if config.OAuth2 == nil || config.OAuth2.Host == "" {
		return nil, alfresco.ErrMissingOAuth2Config
	}

	oauthCfg := *config.OAuth2
	host := strings.TrimSuffix(oauthCfg.Host, "/")

	auth := &OAuth2Auth{
		state:  StateUnauthenticated,
		tokens: NewTokenStore(),
		config: oauthCfg,
		oauthConfig: &oauth2.Config{
			ClientID:     oauthCfg.ClientID,
			ClientSecret: oauthCfg.Secret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   host + constants.OAuth2AuthPath,
				TokenURL:  host + constants.OAuth2TokenPath,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: oauthCfg.RedirectURI,
			Scopes:      strings.Fields(oauthCfg.Scope),
		},
		client:    opts.httpClient(host),
		persister: newCredentialPersister(opts.Store, opts.Logger),
		logger:    alfresco.LoggerOrNoop(opts.Logger),
	}

	auth.restore(config.AccessToken)

	return auth, nil
}

func (a *OAuth2Auth) restore(accessToken string) {
	ctx := context.Background()
	token := &Token{AccessToken: accessToken, TokenType: "Bearer"}

	if accessToken == "" {
		token.AccessToken = a.persister.get(ctx, constants.StorageKeyAccessToken)
		token.RefreshToken = a.persister.get(ctx, constants.StorageKeyRefreshToken)
		token.IDToken = a.persister.get(ctx, constants.StorageKeyIDToken)

		expiresAt, err := time.Parse(time.RFC3339, a.persister.get(ctx, constants.StorageKeyExpiresAt))
		if err == nil {
			token.ExpiresAt = expiresAt
		}
	}

	if token.AccessToken == "" {
		return
	}

	if token.ExpiresAt.IsZero() {
		token.ExpiresAt = claimExpiry(token.AccessToken)
	}

	a.tokens.Set(token)
	a.setState(StateAuthenticated)
	a.persister.set(ctx, constants.StorageKeyAccessToken, token.AccessToken)
	a.startAutoRefresh()
}

// SetRefreshHook registers fn to be called with the new access token after
// every successful refresh, manual or automatic.
func (a *OAuth2Auth) SetRefreshHook(fn func(accessToken string)) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	a.onRefresh = fn
}

// State returns the current flow state.
func (a *OAuth2Auth) State() OAuth2State {
	a.mutex.RLock()
	defer a.mutex.RUnlock()

	return a.state
}

func (a *OAuth2Auth) setState(state OAuth2State) OAuth2State {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	previous := a.state
	a.state = state

	return previous
}

// beginAuthenticating moves to AUTHENTICATING unless a password grant is
// already running.
func (a *OAuth2Auth) beginAuthenticating() (OAuth2State, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.state == StateAuthenticating {
		return a.state, false
	}

	previous := a.state
	a.state = StateAuthenticating

	return previous, true
}

// ImplicitFlow reports whether the strategy runs the implicit grant.
func (a *OAuth2Auth) ImplicitFlow() bool {
	return a.config.ImplicitFlow
}

// Token returns the current access token, or "".
func (a *OAuth2Auth) Token() string {
	token := a.tokens.Get()
	if token == nil {
		return ""
	}

	return token.AccessToken
}

// CurrentToken returns a copy of the full token set, or nil.
func (a *OAuth2Auth) CurrentToken() *Token {
	token := a.tokens.Get()
	if token == nil {
		return nil
	}

	clone := *token

	return &clone
}

// IsLoggedIn reports whether an unexpired access token is held.
func (a *OAuth2Auth) IsLoggedIn() bool {
	switch a.State() {
	case StateAuthenticated, StateRefreshing:
		return a.tokens.Get().Valid()
	default:
		return false
	}
}

// Username returns the username of the last login, as persisted.
func (a *OAuth2Auth) Username(ctx context.Context) string {
	return a.persister.get(ctx, constants.StorageKeyUsername)
}

// Login runs the resource owner password grant. A Login started while
// another one is waiting for the identity provider fails with
// alfresco.ErrLoginInProgress.
func (a *OAuth2Auth) Login(ctx context.Context, username, password string) (string, error) {
	if a.config.ImplicitFlow {
		return "", alfresco.ErrPasswordGrantImplicit
	}

	previous, ok := a.beginAuthenticating()
	if !ok {
		return "", alfresco.ErrLoginInProgress
	}

	username = trimUsername(username)

	token, err := a.oauthConfig.PasswordCredentialsToken(a.clientContext(ctx), username, password)
	if err != nil {
		a.setState(previous)

		err = convertOAuth2Error(err)
		a.logFailure("login", err)

		return "", fmt.Errorf("password grant: %w", err)
	}

	a.install(ctx, fromOAuth2Token(token), username)

	a.logger.Info("login succeeded", map[string]interface{}{
		"strategy": "oauth2",
		"username": username,
	})

	return token.AccessToken, nil
}

// BeginImplicitLogin prepares an implicit grant. The caller sends the user
// agent to the returned authorization URL and hands the redirect back to
// CompleteImplicitLogin.
func (a *OAuth2Auth) BeginImplicitLogin(ctx context.Context) (*alfresco.ImplicitLogin, error) {
	if !a.config.ImplicitFlow {
		return nil, alfresco.ErrImplicitFlowDisabled
	}

	state := uuid.NewString()
	nonce := uuid.NewString()

	authURL := a.oauthConfig.AuthCodeURL(state,
		oauth2.SetAuthURLParam("response_type", "id_token token"),
		oauth2.SetAuthURLParam("nonce", nonce),
	)

	a.mutex.Lock()
	a.state = StateImplicitPending
	a.pendingState = state
	a.pendingNonce = nonce
	a.mutex.Unlock()

	a.persister.set(ctx, constants.StorageKeyImplicitState, state)
	a.persister.set(ctx, constants.StorageKeyImplicitNonce, nonce)

	return &alfresco.ImplicitLogin{
		AuthorizationURL: authURL,
		State:            state,
		Nonce:            nonce,
	}, nil
}

// CompleteImplicitLogin finishes an implicit grant from the redirect the
// identity provider produced: a full URL, its fragment, or a query string.
//
//nolint:funlen,cyclop // Each callback check maps to its own error
func (a *OAuth2Auth) CompleteImplicitLogin(ctx context.Context, callback string) (string, error) {
	if !a.config.ImplicitFlow {
		return "", alfresco.ErrImplicitFlowDisabled
	}

	a.mutex.RLock()
	expectedState := a.pendingState
	expectedNonce := a.pendingNonce
	a.mutex.RUnlock()

	if expectedState == "" {
		expectedState = a.persister.get(ctx, constants.StorageKeyImplicitState)
		expectedNonce = a.persister.get(ctx, constants.StorageKeyImplicitNonce)
	}

	if expectedState == "" {
		return "", alfresco.ErrNoImplicitLogin
	}

	values, err := parseCallback(callback)
	if err != nil {
		a.failImplicit(ctx)

		return "", fmt.Errorf("parsing implicit callback: %w", err)
	}

	if code := values.Get("error"); code != "" {
		a.failImplicit(ctx)

		return "", fmt.Errorf("%w: %s %s", alfresco.ErrImplicitCallbackError, code, values.Get("error_description"))
	}

	if values.Get("state") != expectedState {
		a.failImplicit(ctx)

		return "", alfresco.ErrImplicitStateMismatch
	}

	accessToken := values.Get("access_token")
	if accessToken == "" {
		a.failImplicit(ctx)

		return "", alfresco.ErrImplicitNoAccessToken
	}

	idToken := values.Get("id_token")
	if idToken != "" && expectedNonce != "" {
		claims := parseClaims(idToken)
		if nonce, _ := claims["nonce"].(string); nonce != expectedNonce {
			a.failImplicit(ctx)

			return "", alfresco.ErrImplicitNonceMismatch
		}
	}

	token := &Token{
		AccessToken: accessToken,
		TokenType:   values.Get("token_type"),
		IDToken:     idToken,
	}

	if expiresIn, parseErr := strconv.ParseInt(values.Get("expires_in"), 10, 64); parseErr == nil && expiresIn > 0 {
		token.ExpiresIn = expiresIn
		token.ExpiresAt = time.Now().Add(time.Duration(expiresIn) * time.Second)
	} else {
		token.ExpiresAt = claimExpiry(accessToken)
	}

	a.clearPending(ctx)
	a.install(ctx, token, "")

	a.logger.Info("implicit login completed", map[string]interface{}{"strategy": "oauth2"})

	return accessToken, nil
}

func (a *OAuth2Auth) failImplicit(ctx context.Context) {
	a.clearPending(ctx)
	a.setState(StateUnauthenticated)
}

func (a *OAuth2Auth) clearPending(ctx context.Context) {
	a.mutex.Lock()
	a.pendingState = ""
	a.pendingNonce = ""
	a.mutex.Unlock()

	a.persister.remove(ctx, constants.StorageKeyImplicitState, constants.StorageKeyImplicitNonce)
}

// RefreshToken runs the refresh token grant. A rejection by the identity
// provider ends the session.
func (a *OAuth2Auth) RefreshToken(ctx context.Context) (string, error) {
	if a.config.ImplicitFlow {
		return "", alfresco.ErrImplicitFlowRefresh
	}

	current := a.tokens.Get()
	if current == nil || current.RefreshToken == "" {
		return "", alfresco.ErrNoRefreshToken
	}

	previous := a.setState(StateRefreshing)

	source := a.oauthConfig.TokenSource(a.clientContext(ctx), &oauth2.Token{RefreshToken: current.RefreshToken})

	token, err := source.Token()
	if err != nil {
		err = convertOAuth2Error(err)
		a.logFailure("token refresh", err)

		status := alfresco.StatusCode(err)
		if status >= nethttp.StatusBadRequest && status < nethttp.StatusInternalServerError {
			a.clearSession(ctx)
		} else {
			a.setState(previous)
		}

		return "", fmt.Errorf("refresh grant: %w", err)
	}

	if a.State() != StateRefreshing {
		return "", fmt.Errorf("%w: session ended during refresh", alfresco.ErrUnauthorized)
	}

	refreshed := fromOAuth2Token(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = current.RefreshToken
	}

	a.install(ctx, refreshed, "")

	a.mutex.RLock()
	hook := a.onRefresh
	a.mutex.RUnlock()

	if hook != nil {
		hook(refreshed.AccessToken)
	}

	a.logger.Debug("token refreshed", map[string]interface{}{"strategy": "oauth2"})

	return refreshed.AccessToken, nil
}

// Logout revokes the refresh token at the identity provider when one is held
// and clears the session whatever the outcome.
func (a *OAuth2Auth) Logout(ctx context.Context) error {
	current := a.tokens.Get()

	var err error

	if current != nil && current.RefreshToken != "" && !a.config.ImplicitFlow {
		form := url.Values{
			"client_id":     []string{a.config.ClientID},
			"refresh_token": []string{current.RefreshToken},
		}

		if a.config.Secret != "" {
			form.Set("client_secret", a.config.Secret)
		}

		_, err = a.client.PostForm(ctx, constants.OAuth2LogoutPath, form)
	}

	a.clearSession(ctx)

	if err != nil {
		a.logFailure("logout", err)

		return fmt.Errorf("revoking refresh token: %w", err)
	}

	a.logger.Info("logout succeeded", map[string]interface{}{"strategy": "oauth2"})

	return nil
}

// LogoutURL returns the end-session URL the user agent should follow to
// log out of the identity provider in the implicit flow.
func (a *OAuth2Auth) LogoutURL() string {
	query := url.Values{}

	if token := a.tokens.Get(); token != nil && token.IDToken != "" {
		query.Set("id_token_hint", token.IDToken)
	}

	if a.config.RedirectURILogout != "" {
		query.Set("post_logout_redirect_uri", a.config.RedirectURILogout)
	}

	logoutURL := a.client.BaseURL() + constants.OAuth2LogoutPath
	if len(query) > 0 {
		logoutURL += "?" + query.Encode()
	}

	return logoutURL
}

// InvalidateSession drops the tokens without contacting the identity provider.
func (a *OAuth2Auth) InvalidateSession() {
	a.stopAutoRefresh()
	a.tokens.Clear()
	a.setState(StateUnauthenticated)

	a.logger.Debug("session invalidated", map[string]interface{}{"strategy": "oauth2"})
}

// Forget drops the token set locally and from the credential store.
func (a *OAuth2Auth) Forget(ctx context.Context) {
	a.clearSession(ctx)

	a.logger.Debug("stored token removed", map[string]interface{}{"strategy": "oauth2"})
}

// Authentication returns a binding that sends the live access token as a
// bearer token.
func (a *OAuth2Auth) Authentication() http.Authenticator {
	return http.AuthenticatorFunc(func(req *nethttp.Request) {
		token := a.Token()
		if token == "" {
			return
		}

		req.Header.Set("Authorization", "Bearer "+token)
	})
}

// Close stops the background refresh loop.
func (a *OAuth2Auth) Close() {
	a.stopAutoRefresh()
}

func (a *OAuth2Auth) install(ctx context.Context, token *Token, username string) {
	if token.TokenType == "" {
		token.TokenType = "Bearer"
	}

	a.tokens.Set(token)
	a.setState(StateAuthenticated)

	a.persister.set(ctx, constants.StorageKeyAccessToken, token.AccessToken)
	a.persister.set(ctx, constants.StorageKeyRefreshToken, token.RefreshToken)
	a.persister.set(ctx, constants.StorageKeyIDToken, token.IDToken)
	a.persister.setTime(ctx, constants.StorageKeyExpiresAt, token.ExpiresAt)

	if name := tokenUsername(token); name != "" {
		username = name
	}

	if username != "" {
		a.persister.set(ctx, constants.StorageKeyUsername, username)
	}

	a.startAutoRefresh()
}

func (a *OAuth2Auth) clearSession(ctx context.Context) {
	a.stopAutoRefresh()
	a.tokens.Clear()
	a.setState(StateUnauthenticated)

	a.persister.remove(ctx,
		constants.StorageKeyAccessToken,
		constants.StorageKeyRefreshToken,
		constants.StorageKeyIDToken,
		constants.StorageKeyExpiresAt,
	)
}

func (a *OAuth2Auth) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.client.StandardClient())
}

func (a *OAuth2Auth) logFailure(operation string, err error) {
	a.logger.Warn(operation+" failed", map[string]interface{}{
		"strategy":    "oauth2",
		"status_code": alfresco.StatusCode(err),
		"error":       err.Error(),
	})
}

func (a *OAuth2Auth) startAutoRefresh() {
	interval := a.config.RefreshTokenTimeout
	if interval <= 0 || a.config.ImplicitFlow {
		return
	}

	a.refreshMutex.Lock()
	defer a.refreshMutex.Unlock()

	if a.refreshStop != nil {
		return
	}

	stop := make(chan struct{})
	a.refreshStop = stop

	go a.autoRefresh(interval, stop)
}

func (a *OAuth2Auth) stopAutoRefresh() {
	a.refreshMutex.Lock()
	defer a.refreshMutex.Unlock()

	if a.refreshStop != nil {
		close(a.refreshStop)
		a.refreshStop = nil
	}
}

func (a *OAuth2Auth) autoRefresh(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultHTTPTimeout)
			_, err := a.RefreshToken(ctx)

			cancel()

			if errors.Is(err, alfresco.ErrNoRefreshToken) {
				a.stopAutoRefresh()

				return
			}
		}
	}
}

func fromOAuth2Token(token *oauth2.Token) *Token {
	converted := &Token{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    token.Expiry,
	}

	if idToken, ok := token.Extra("id_token").(string); ok {
		converted.IDToken = idToken
	}

	if !token.Expiry.IsZero() {
		converted.ExpiresIn = int64(time.Until(token.Expiry).Seconds())
	}

	return converted
}

// convertOAuth2Error turns an identity provider rejection into an
// *alfresco.APIError so callers can inspect the HTTP status.
func convertOAuth2Error(err error) error {
	retrieveErr := &oauth2.RetrieveError{}
	if !errors.As(err, &retrieveErr) || retrieveErr.Response == nil {
		return err
	}

	method, endpoint := "", ""
	if retrieveErr.Response.Request != nil {
		method = retrieveErr.Response.Request.Method
		endpoint = retrieveErr.Response.Request.URL.String()
	}

	return alfresco.ParseAPIError(retrieveErr.Response.StatusCode, method, endpoint, retrieveErr.Body)
}

func parseCallback(callback string) (url.Values, error) {
	raw := strings.TrimSpace(callback)

	if index := strings.Index(raw, "#"); index >= 0 {
		raw = raw[index+1:]
	} else if index := strings.Index(raw, "?"); index >= 0 {
		raw = raw[index+1:]
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid callback parameters: %w", err)
	}

	return values, nil
}

// parseClaims reads the claims of a JWT without verifying its signature.
// Opaque tokens yield no claims.
func parseClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(token, claims)
	if err != nil {
		return jwt.MapClaims{}
	}

	return claims
}

func claimExpiry(token string) time.Time {
	expiry, err := parseClaims(token).GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}
	}

	return expiry.Time
}

func tokenUsername(token *Token) string {
	for _, raw := range []string{token.IDToken, token.AccessToken} {
		if raw == "" {
			continue
		}

		if name, ok := parseClaims(raw)["preferred_username"].(string); ok && name != "" {
			return name
		}
	}

	return ""
}
