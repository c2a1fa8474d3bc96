package alfrescoapi

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	internalhttp "github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// Login authenticates username against the backend(s) of the configured
// mode. On success the obtained credentials are also written to the session
// configuration.
//
// In ALL mode both logins run concurrently and both must succeed. A leg that
// succeeded stays logged in when the other one failed.
func (a *API) Login(ctx context.Context, username, password string) (*alfresco.LoginResult, error) {
	username = strings.TrimSpace(username)

	switch m := a.currentMode().(type) {
	case *oauthMode:
		token, err := m.oauth.Login(ctx, username, password)
		if err != nil {
			return nil, err
		}

		a.updateConfig(func(config *alfresco.Config) { config.AccessToken = token })
		a.emitLogin(m.name())

		return &alfresco.LoginResult{AccessToken: token}, nil
	case *bpmMode:
		ticket, err := m.bpm.Login(ctx, username, password)
		if err != nil {
			return nil, err
		}

		a.updateConfig(func(config *alfresco.Config) { config.TicketBpm = ticket })
		a.emitLogin(m.name())

		return &alfresco.LoginResult{TicketBpm: ticket}, nil
	case *ecmMode:
		ticket, err := m.ecm.Login(ctx, username, password)
		if err != nil {
			return nil, err
		}

		a.rebindEcm(m.ecm.Authentication())
		a.updateConfig(func(config *alfresco.Config) { config.TicketEcm = ticket })
		a.emitLogin(m.name())

		return &alfresco.LoginResult{TicketEcm: ticket}, nil
	case *dualMode:
		return a.dualLogin(ctx, m, username, password)
	default:
		return nil, alfresco.ErrNoProvider
	}
}

func (a *API) dualLogin(ctx context.Context, mode *dualMode, username, password string) (*alfresco.LoginResult, error) {
	var (
		group     errgroup.Group
		ticketEcm string
		ticketBpm string
	)

	group.Go(func() error {
		ticket, err := mode.ecm.Login(ctx, username, password)
		if err != nil {
			return fmt.Errorf("content repository login: %w", err)
		}

		ticketEcm = ticket

		return nil
	})

	group.Go(func() error {
		ticket, err := mode.bpm.Login(ctx, username, password)
		if err != nil {
			return fmt.Errorf("process engine login: %w", err)
		}

		ticketBpm = ticket

		return nil
	})

	err := group.Wait()

	a.updateConfig(func(config *alfresco.Config) {
		if ticketEcm != "" {
			config.TicketEcm = ticketEcm
		}

		if ticketBpm != "" {
			config.TicketBpm = ticketBpm
		}
	})

	if err != nil {
		return nil, a.jointFailure("login", err)
	}

	a.emitLogin(mode.name())

	return &alfresco.LoginResult{TicketEcm: ticketEcm, TicketBpm: ticketBpm}, nil
}

// ImplicitLogin starts an OAuth2 implicit grant. Send the user agent to the
// returned authorization URL and pass the redirect it comes back with to
// CompleteImplicitLogin.
func (a *API) ImplicitLogin(ctx context.Context) (*alfresco.ImplicitLogin, error) {
	m, ok := a.currentMode().(*oauthMode)
	if !ok {
		return nil, alfresco.ErrMissingOAuth2Config
	}

	return m.oauth.BeginImplicitLogin(ctx)
}

// CompleteImplicitLogin finishes an implicit grant from the identity provider
// redirect and returns the access token.
func (a *API) CompleteImplicitLogin(ctx context.Context, callback string) (string, error) {
	m, ok := a.currentMode().(*oauthMode)
	if !ok {
		return "", alfresco.ErrMissingOAuth2Config
	}

	token, err := m.oauth.CompleteImplicitLogin(ctx, callback)
	if err != nil {
		return "", err
	}

	a.updateConfig(func(config *alfresco.Config) { config.AccessToken = token })
	a.emitLogin(m.name())

	return token, nil
}

// LoginTicket installs tickets obtained elsewhere. The process engine ticket
// is taken as is; the content repository ticket is validated remotely.
func (a *API) LoginTicket(ctx context.Context, ticketEcm, ticketBpm string) (string, error) {
	mode := a.currentMode()

	strategies, ok := tickets(mode)
	if !ok {
		return "", alfresco.ErrNoTicketStrategy
	}

	a.updateConfig(func(config *alfresco.Config) {
		config.TicketEcm = ticketEcm
		config.TicketBpm = ticketBpm
	})

	strategies.bpm.SetTicket(ticketBpm)
	strategies.ecm.SetTicket(ticketEcm)

	ticket, err := strategies.ecm.ValidateTicket(ctx)
	if err != nil {
		return "", err
	}

	a.emitLogin(mode.name())

	return ticket, nil
}

// Logout ends the session of the configured mode. Local credentials are
// cleared even when a server call fails; the failure is still returned.
func (a *API) Logout(ctx context.Context) error {
	switch m := a.currentMode().(type) {
	case *oauthMode:
		err := m.oauth.Logout(ctx)
		a.updateConfig(func(config *alfresco.Config) { config.AccessToken = "" })

		return a.singleLogout(m.name(), err)
	case *bpmMode:
		err := m.bpm.Logout(ctx)
		a.updateConfig(func(config *alfresco.Config) { config.TicketBpm = "" })

		return a.singleLogout(m.name(), err)
	case *ecmMode:
		err := m.ecm.Logout(ctx)
		a.updateConfig(func(config *alfresco.Config) { config.TicketEcm = "" })

		return a.singleLogout(m.name(), err)
	case *dualMode:
		return a.dualLogout(ctx, m)
	default:
		return alfresco.ErrNoProvider
	}
}

func (a *API) singleLogout(source string, err error) error {
	if err != nil {
		return err
	}

	a.events.Emit(alfresco.Event{Name: alfresco.EventLogout, Source: source})

	return nil
}

func (a *API) dualLogout(ctx context.Context, mode *dualMode) error {
	var group errgroup.Group

	group.Go(func() error {
		err := mode.ecm.Logout(ctx)
		if err != nil {
			return fmt.Errorf("content repository logout: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		err := mode.bpm.Logout(ctx)
		if err != nil {
			return fmt.Errorf("process engine logout: %w", err)
		}

		return nil
	})

	err := group.Wait()

	a.updateConfig(func(config *alfresco.Config) {
		config.TicketEcm = ""
		config.TicketBpm = ""
	})

	if err != nil {
		return a.jointFailure("logout", err)
	}

	a.events.Emit(alfresco.Event{Name: alfresco.EventLogout, Source: mode.name()})

	return nil
}

// RefreshToken renews the OAuth2 access token with the refresh token grant.
// It fails without network I/O outside OAuth2 mode and in the implicit flow.
func (a *API) RefreshToken(ctx context.Context) (string, error) {
	m, ok := a.currentMode().(*oauthMode)
	if !ok {
		return "", alfresco.ErrMissingOAuth2Config
	}

	if m.oauth.ImplicitFlow() {
		return "", alfresco.ErrImplicitFlowRefresh
	}

	return m.oauth.RefreshToken(ctx)
}

// rebindEcm hands a fresh content repository binding to the clients.
func (a *API) rebindEcm(authentication internalhttp.Authenticator) {
	a.mutex.RLock()
	clients := a.clients
	a.mutex.RUnlock()

	clients.SetEcmAuthentication(authentication)
}

// jointFailure reports a failed ALL mode login or logout. Authentication
// rejections are announced with EventUnauthorized first and wrap
// alfresco.ErrUnauthorized.
func (a *API) jointFailure(source string, err error) error {
	status := alfresco.StatusCode(err)

	if alfresco.IsUnauthorized(err) {
		a.events.Emit(alfresco.Event{
			Name:       alfresco.EventUnauthorized,
			Source:     source,
			StatusCode: status,
			Err:        err,
		})

		err = fmt.Errorf("%w: %w", alfresco.ErrUnauthorized, err)
	}

	a.events.Emit(alfresco.Event{
		Name:       alfresco.EventError,
		Source:     source,
		StatusCode: status,
		Err:        err,
	})

	a.currentLogger().Warn(source+" failed", map[string]interface{}{
		"mode":        "all",
		"status_code": status,
		"error":       err.Error(),
	})

	return err
}

func (a *API) emitLogin(source string) {
	a.events.Emit(alfresco.Event{Name: alfresco.EventLogin, Source: source})
}
