package alfrescoapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfrescoapi"
	"github.com/fivetwenty-io/alfresco-client/pkg/storage"
)

type identityProvider struct {
	*httptest.Server

	requests atomic.Int32
}

func newIdentityProvider(t *testing.T) *identityProvider {
	t.Helper()

	provider := &identityProvider{}

	provider.Server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		provider.requests.Add(1)

		assert.NoError(t, request.ParseForm())

		switch request.URL.Path {
		case "/realm/token":
			switch request.PostForm.Get("grant_type") {
			case "password":
				if request.PostForm.Get("password") != "secret" {
					writeJSON(writer, http.StatusUnauthorized, `{"error":"invalid_grant","error_description":"Invalid user credentials"}`)

					return
				}

				writeJSON(writer, http.StatusOK,
					`{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":300}`)
			case "refresh_token":
				writeJSON(writer, http.StatusOK, `{"access_token":"access-2","token_type":"Bearer","expires_in":300}`)
			default:
				writer.WriteHeader(http.StatusBadRequest)
			}
		case "/realm/logout":
			writer.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", request.Method, request.URL.Path)
			writer.WriteHeader(http.StatusNotFound)
		}
	}))

	return provider
}

func oauthConfig(idp *identityProvider, backend *fakeBackend) *alfresco.Config {
	config := &alfresco.Config{
		AuthType: alfresco.AuthTypeOAuth,
		Provider: alfresco.ProviderAll,
		OAuth2: &alfresco.OAuth2Config{
			Host:     idp.URL + "/realm",
			ClientID: "alfresco",
			Scope:    "openid",
		},
		RetryMax: 1,
	}

	if backend != nil {
		config.HostEcm = backend.URL
		config.HostBpm = backend.URL
	}

	return config
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestOAuth_LoginRefreshLogout(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	backend := newFakeBackend(t)
	defer backend.Close()

	api, err := alfrescoapi.New(oauthConfig(idp, backend))
	require.NoError(t, err)

	defer api.Close()

	events := recordEvents(api, alfresco.EventLogin, alfresco.EventTokenRefreshed, alfresco.EventLogout)

	result, err := api.Login(context.Background(), "jdoe", "secret")
	require.NoError(t, err)
	assert.Equal(t, "access-1", result.AccessToken)
	assert.Equal(t, "access-1", api.Config().AccessToken)
	assert.Equal(t, "access-1", api.GetTicketAuth())
	assert.True(t, api.IsLoggedIn())
	assert.True(t, api.IsEcmLoggedIn())
	assert.True(t, api.IsBpmLoggedIn())
	assert.Equal(t, [2]string{"", ""}, api.GetTicket())

	// Ticket operations do not apply to OAuth2 sessions.
	api.SetTicket("ignored", "ignored")
	assert.Equal(t, [2]string{"", ""}, api.GetTicket())

	_, err = api.LoginTicket(context.Background(), "ignored", "ignored")
	require.ErrorIs(t, err, alfresco.ErrNoTicketStrategy)

	_, err = api.Discovery().GetRepositoryInformation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", backend.authorization("/alfresco/api/discovery"))

	token, err := api.RefreshToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-2", token)
	assert.Equal(t, "access-2", api.Config().AccessToken)

	_, err = api.Profile().GetProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-2", backend.authorization("/activiti-app/api/enterprise/profile"))

	require.NoError(t, api.Logout(context.Background()))
	assert.False(t, api.IsLoggedIn())
	assert.Empty(t, api.Config().AccessToken)

	assert.Equal(t, []alfresco.EventName{
		alfresco.EventLogin,
		alfresco.EventTokenRefreshed,
		alfresco.EventLogout,
	}, events.names())
}

func TestOAuth_LoginRejected(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	api, err := alfrescoapi.New(oauthConfig(idp, nil))
	require.NoError(t, err)

	_, err = api.Login(context.Background(), "jdoe", "wrong")
	require.Error(t, err)
	assert.True(t, alfresco.IsUnauthorized(err))
	assert.False(t, api.IsLoggedIn())
	assert.Empty(t, api.Config().AccessToken)
}

func TestOAuth_ImplicitRefreshIssuesNoRequest(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	config := oauthConfig(idp, nil)
	config.OAuth2.ImplicitFlow = true
	config.OAuth2.RedirectURI = "http://app/callback"
	config.AccessToken = "existing"

	api, err := alfrescoapi.New(config)
	require.NoError(t, err)

	_, err = api.RefreshToken(context.Background())
	require.ErrorIs(t, err, alfresco.ErrImplicitFlowRefresh)
	assert.True(t, alfresco.IsConfigurationError(err))
	assert.Equal(t, int32(0), idp.requests.Load())
}

func TestOAuth_ImplicitLogin(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	config := oauthConfig(idp, nil)
	config.OAuth2.ImplicitFlow = true
	config.OAuth2.RedirectURI = "http://app/callback"

	api, err := alfrescoapi.New(config)
	require.NoError(t, err)

	events := recordEvents(api, alfresco.EventLogin)

	pending, err := api.ImplicitLogin(context.Background())
	require.NoError(t, err)

	authURL, err := url.Parse(pending.AuthorizationURL)
	require.NoError(t, err)
	assert.Equal(t, "/realm/auth", authURL.Path)
	assert.Equal(t, "id_token token", authURL.Query().Get("response_type"))
	assert.Equal(t, pending.State, authURL.Query().Get("state"))
	assert.False(t, api.IsLoggedIn())

	callback := "http://app/callback#" + url.Values{
		"access_token": {"implicit-token"},
		"state":        {pending.State},
		"expires_in":   {"300"},
	}.Encode()

	token, err := api.CompleteImplicitLogin(context.Background(), callback)
	require.NoError(t, err)
	assert.Equal(t, "implicit-token", token)
	assert.True(t, api.IsLoggedIn())
	assert.Equal(t, "implicit-token", api.Config().AccessToken)
	assert.Equal(t, []alfresco.EventName{alfresco.EventLogin}, events.names())
	assert.Equal(t, int32(0), idp.requests.Load())
}

func TestOAuth_ImplicitDisabled(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	api, err := alfrescoapi.New(oauthConfig(idp, nil))
	require.NoError(t, err)

	_, err = api.ImplicitLogin(context.Background())
	require.ErrorIs(t, err, alfresco.ErrImplicitFlowDisabled)
}

func TestOAuth_ResourceUnauthorized(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	backend := newFakeBackend(t)
	defer backend.Close()

	store := storage.NewMemoryStore()
	config := oauthConfig(idp, backend)
	config.Storage = store

	api, err := alfrescoapi.New(config)
	require.NoError(t, err)

	_, err = api.Login(context.Background(), "jdoe", "secret")
	require.NoError(t, err)

	stored, _ := store.GetItem(context.Background(), "access_token")
	require.NotEmpty(t, stored)

	events := recordEvents(api, alfresco.EventError)

	backend.nodeStatus.Store(http.StatusUnauthorized)

	_, err = api.Nodes().GetNode(context.Background(), "node-1", nil)
	require.Error(t, err)

	assert.Equal(t, []alfresco.EventName{alfresco.EventError}, events.names())
	assert.False(t, api.IsLoggedIn())
	assert.Empty(t, api.GetTicketAuth())

	stored, _ = store.GetItem(context.Background(), "access_token")
	assert.Empty(t, stored)
	stored, _ = store.GetItem(context.Background(), "refresh_token")
	assert.Empty(t, stored)
}

func TestOAuth_ProviderScopesStatus(t *testing.T) {
	t.Parallel()

	idp := newIdentityProvider(t)
	defer idp.Close()

	config := oauthConfig(idp, nil)
	config.Provider = alfresco.ProviderECM
	config.AccessToken = "existing"

	api, err := alfrescoapi.New(config)
	require.NoError(t, err)

	assert.True(t, api.IsLoggedIn())
	assert.True(t, api.IsEcmLoggedIn())
	assert.False(t, api.IsBpmLoggedIn())

	api.InvalidateSession()
	assert.False(t, api.IsLoggedIn())
	assert.Empty(t, api.GetTicketAuth())
}
