// Package auth implements the three authentication strategies of a session:
// content repository tickets, process engine tickets and OAuth2 tokens.
//
// Each strategy exclusively owns its credential and logged-in flag, mirrors
// them into the credential store and hands out an Authenticator that reads
// the live credential on every request.
package auth

import (
	"context"
	"strings"
	"sync"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// Options carries the collaborators shared by every strategy.
type Options struct {
	// Store receives tickets, tokens and usernames. Nil disables persistence.
	Store alfresco.CredentialStore
	// Logger receives login, logout and refresh outcomes.
	Logger alfresco.Logger
	// HTTPOptions configure the strategy's own HTTP client. Retries are
	// always disabled for authentication calls.
	HTTPOptions []http.Option
}

func (o Options) httpClient(baseURL string) *http.Client {
	opts := append([]http.Option{}, o.HTTPOptions...)
	opts = append(opts, http.WithLogger(o.Logger), http.WithNoRetry())

	return http.NewClient(baseURL, nil, opts...)
}

// ticketSession is the state shared by the two ticket strategies.
type ticketSession struct {
	mutex    sync.RWMutex
	ticket   string
	loggedIn bool

	name        string
	ticketKey   string
	usernameKey string
	persister   *credentialPersister
	logger      alfresco.Logger
}

func newTicketSession(name, ticketKey, usernameKey string, opts Options) ticketSession {
	return ticketSession{
		name:        name,
		ticketKey:   ticketKey,
		usernameKey: usernameKey,
		persister:   newCredentialPersister(opts.Store, opts.Logger),
		logger:      alfresco.LoggerOrNoop(opts.Logger),
	}
}

// Ticket returns the current ticket, or "" when there is none.
func (s *ticketSession) Ticket() string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.ticket
}

// SetTicket installs a ticket obtained elsewhere. A non-empty ticket marks
// the session logged in, an empty one logs it out locally.
func (s *ticketSession) SetTicket(ticket string) {
	s.mutex.Lock()
	s.ticket = ticket
	s.loggedIn = ticket != ""
	s.mutex.Unlock()

	s.persister.set(context.Background(), s.ticketKey, ticket)
}

// IsLoggedIn reports whether the session holds an accepted ticket.
func (s *ticketSession) IsLoggedIn() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.loggedIn && s.ticket != ""
}

// InvalidateSession drops the ticket without contacting the backend.
func (s *ticketSession) InvalidateSession() {
	s.mutex.Lock()
	s.ticket = ""
	s.loggedIn = false
	s.mutex.Unlock()

	s.logger.Debug("session invalidated", map[string]interface{}{"strategy": s.name})
}

// Forget drops the ticket locally and from the credential store, so that a
// later session over the same store does not restore it.
func (s *ticketSession) Forget(ctx context.Context) {
	s.clear(ctx)

	s.logger.Debug("stored ticket removed", map[string]interface{}{"strategy": s.name})
}

// Username returns the last username that logged in, as persisted.
func (s *ticketSession) Username(ctx context.Context) string {
	return s.persister.get(ctx, s.usernameKey)
}

func (s *ticketSession) loginSucceeded(ctx context.Context, username, ticket string) {
	s.mutex.Lock()
	s.ticket = ticket
	s.loggedIn = true
	s.mutex.Unlock()

	s.persister.set(ctx, s.ticketKey, ticket)
	s.persister.set(ctx, s.usernameKey, username)

	s.logger.Info("login succeeded", map[string]interface{}{
		"strategy": s.name,
		"username": username,
	})
}

func (s *ticketSession) clear(ctx context.Context) {
	s.mutex.Lock()
	s.ticket = ""
	s.loggedIn = false
	s.mutex.Unlock()

	s.persister.remove(ctx, s.ticketKey)
}

func (s *ticketSession) logFailure(operation string, err error) {
	s.logger.Warn(operation+" failed", map[string]interface{}{
		"strategy":    s.name,
		"status_code": alfresco.StatusCode(err),
		"error":       err.Error(),
	})
}

func trimUsername(username string) string {
	return strings.TrimSpace(username)
}

// restore installs the configured ticket, falling back to the one persisted
// by an earlier session over the same store.
func (s *ticketSession) restore(configured string) {
	ticket := configured
	if ticket == "" {
		ticket = s.persister.get(context.Background(), s.ticketKey)
	}

	if ticket != "" {
		s.SetTicket(ticket)
	}
}
