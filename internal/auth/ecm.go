package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	nethttp "net/http"

	"github.com/fivetwenty-io/alfresco-client/internal/constants"
	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// ticketRequest is the body of a ticket creation call.
type ticketRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

// ticketEntry is the answer to ticket creation and validation calls.
type ticketEntry struct {
	Entry struct {
		ID     string `json:"id"`
		UserID string `json:"userId,omitempty"`
	} `json:"entry"`
}

// EcmAuth authenticates against the content repository with tickets.
type EcmAuth struct {
	ticketSession

	client *http.Client
}

// NewEcmAuth creates the content repository strategy for a normalized
// configuration and installs config.TicketEcm when set.
func NewEcmAuth(config *alfresco.Config, opts Options) *EcmAuth {
	auth := &EcmAuth{
		ticketSession: newTicketSession("ecm", constants.StorageKeyTicketEcm, constants.StorageKeyEcmUsername, opts),
		client:        opts.httpClient(ecmAuthURL(config.EcmBaseURL())),
	}

	auth.restore(config.TicketEcm)

	return auth
}

func ecmAuthURL(baseURL string) string {
	return baseURL + constants.AuthenticationPath
}

// ChangeHost rebinds the strategy to the content repository root of config.
func (a *EcmAuth) ChangeHost(config *alfresco.Config) {
	a.client.SetBaseURL(ecmAuthURL(config.EcmBaseURL()))
}

// BaseURL returns the authentication API root currently used.
func (a *EcmAuth) BaseURL() string {
	return a.client.BaseURL()
}

// Login exchanges credentials for a ticket. On failure the previous state is
// kept and the transport error, carrying the HTTP status, is returned.
func (a *EcmAuth) Login(ctx context.Context, username, password string) (string, error) {
	username = trimUsername(username)

	resp, err := a.client.Post(ctx, constants.TicketsPath, ticketRequest{
		UserID:   username,
		Password: password,
	})
	if err != nil {
		a.logFailure("login", err)

		return "", fmt.Errorf("creating ticket: %w", err)
	}

	var entry ticketEntry

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return "", fmt.Errorf("parsing ticket response: %w", err)
	}

	a.loginSucceeded(ctx, username, entry.Entry.ID)

	return entry.Entry.ID, nil
}

// Logout deletes the current ticket on the server. The repository identifies
// the ticket from the request credentials. Local state is cleared whatever
// the outcome.
func (a *EcmAuth) Logout(ctx context.Context) error {
	req := &http.Request{
		Method:  nethttp.MethodDelete,
		Path:    constants.CurrentTicketPath,
		Headers: map[string]string{},
	}

	if ticket := a.Ticket(); ticket != "" {
		req.Headers["Authorization"] = ticketAuthorization(ticket)
	}

	_, err := a.client.Do(ctx, req)

	a.clear(ctx)

	if err != nil {
		a.logFailure("logout", err)

		return fmt.Errorf("deleting ticket: %w", err)
	}

	a.logger.Info("logout succeeded", map[string]interface{}{"strategy": a.name})

	return nil
}

// ValidateTicket checks the current ticket with the server. On success the
// session is logged in with the validated ticket.
func (a *EcmAuth) ValidateTicket(ctx context.Context) (string, error) {
	ticket := a.Ticket()

	resp, err := a.client.Do(ctx, &http.Request{
		Method:  nethttp.MethodGet,
		Path:    constants.CurrentTicketPath,
		Headers: map[string]string{"Authorization": ticketAuthorization(ticket)},
	})
	if err != nil {
		a.logFailure("ticket validation", err)

		if alfresco.IsUnauthorized(err) {
			a.InvalidateSession()
		}

		return "", fmt.Errorf("validating ticket: %w", err)
	}

	var entry ticketEntry

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return "", fmt.Errorf("parsing ticket response: %w", err)
	}

	if entry.Entry.ID != "" {
		ticket = entry.Entry.ID
	}

	a.mutex.Lock()
	a.ticket = ticket
	a.loggedIn = true
	a.mutex.Unlock()

	a.persister.set(ctx, a.ticketKey, ticket)

	return ticket, nil
}

// Authentication returns a binding that sends the live ticket as HTTP Basic
// credentials "ROLE_TICKET:<ticket>".
func (a *EcmAuth) Authentication() http.Authenticator {
	return http.AuthenticatorFunc(func(req *nethttp.Request) {
		ticket := a.Ticket()
		if ticket == "" {
			return
		}

		req.Header.Set("Authorization", ticketAuthorization(ticket))
	})
}

func ticketAuthorization(ticket string) string {
	return basicAuthorization("ROLE_TICKET", ticket)
}

func basicAuthorization(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}
