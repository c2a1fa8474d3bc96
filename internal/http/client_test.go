package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	alfhttp "github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// MockLogger for testing.
type MockLogger struct {
	logs []map[string]interface{}
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "debug", "msg": msg, "fields": fields})
}

func (l *MockLogger) Info(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "info", "msg": msg, "fields": fields})
}

func (l *MockLogger) Warn(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "warn", "msg": msg, "fields": fields})
}

func (l *MockLogger) Error(msg string, fields map[string]interface{}) {
	l.logs = append(l.logs, map[string]interface{}{"level": "error", "msg": msg, "fields": fields})
}

func bearer(token string) alfhttp.Authenticator {
	return alfhttp.AuthenticatorFunc(func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()
	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/alfresco/api/-default-/public/alfresco/versions/1/nodes/-root-", request.URL.Path)
			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "Bearer test-token", request.Header.Get("Authorization"))
			assert.Equal(t, "application/json", request.Header.Get("Accept"))

			response := map[string]string{"id": "node-id", "name": "Company Home"}
			_ = json.NewEncoder(writer).Encode(response)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL+"/alfresco/", bearer("test-token"))

		req := &alfhttp.Request{
			Method: "GET",
			Path:   "/api/-default-/public/alfresco/versions/1/nodes/-root-",
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var result map[string]string

		err = json.Unmarshal(resp.Body, &result)
		require.NoError(t, err)
		assert.Equal(t, "node-id", result["id"])
		assert.Equal(t, "Company Home", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "/groups", request.URL.Path)
			assert.Equal(t, "maxItems=10&skipCount=2", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil)

		req := &alfhttp.Request{
			Method: "GET",
			Path:   "/groups",
			Query:  url.Values{"skipCount": []string{"2"}, "maxItems": []string{"10"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "admin", body["userId"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "/tickets", map[string]string{"userId": "admin"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("request with form", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "application/x-www-form-urlencoded", request.Header.Get("Content-Type"))
			assert.NoError(t, request.ParseForm())
			assert.Equal(t, "admin", request.PostForm.Get("j_username"))
			assert.Equal(t, "secret", request.PostForm.Get("j_password"))

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil)

		resp, err := client.PostForm(context.Background(), "/app/authentication", url.Values{
			"j_username": []string{"admin"},
			"j_password": []string{"secret"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"error":{"errorKey":"framework.exception.EntityNotFound",` +
				`"statusCode":404,"briefSummary":"The entity with id: missing was not found"}}`))
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/nodes/missing", nil)
		require.Error(t, err)
		assert.Equal(t, 404, resp.StatusCode)

		apiErr := &alfresco.APIError{}
		ok := errors.As(err, &apiErr)
		require.True(t, ok)
		assert.Equal(t, "framework.exception.EntityNotFound", apiErr.Key)
		assert.Equal(t, "The entity with id: missing was not found", apiErr.Message)
		assert.True(t, alfresco.IsNotFound(err))
	})

	t.Run("custom headers and cookies", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "custom-value", request.Header.Get("X-Custom-Header"))

			cookie, err := request.Cookie("CSRF-TOKEN")
			assert.NoError(t, err)
			assert.Equal(t, "token", cookie.Value)

			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil)

		req := &alfhttp.Request{
			Method: "GET",
			Path:   "/api/enterprise/profile",
			Headers: map[string]string{
				"X-Custom-Header": "custom-value",
			},
			Cookies: []*http.Cookie{{Name: "CSRF-TOKEN", Value: "token"}},
		}

		resp, err := client.Do(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(writer).Encode(map[string]string{"result": "ok"})
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := alfhttp.NewClient(server.URL, nil, alfhttp.WithLogger(logger), alfhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/discovery", nil)
		require.NoError(t, err)

		// Should have logged request and response
		assert.Len(t, logger.logs, 2)
		assert.Equal(t, "HTTP Request", logger.logs[0]["msg"])
		assert.Equal(t, "HTTP Response", logger.logs[1]["msg"])
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {}))
		serverURL := server.URL
		server.Close()

		client := alfhttp.NewClient(serverURL, nil, alfhttp.WithNoRetry())

		resp, err := client.Get(context.Background(), "/discovery", nil)
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, 0, alfresco.StatusCode(err))
	})
}

func TestClient_Authenticator(t *testing.T) {
	t.Parallel()

	var seen atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen.Store(request.Header.Get("Authorization"))
		writer.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := alfhttp.NewClient(server.URL, bearer("first"))

	_, err := client.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer first", seen.Load())

	client.SetAuthenticator(bearer("second"))

	_, err = client.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer second", seen.Load())

	client.SetAuthenticator(nil)

	_, err = client.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Empty(t, seen.Load())
}

func TestClient_SetBaseURL(t *testing.T) {
	t.Parallel()

	first := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNoContent)
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusAccepted)
	}))
	defer second.Close()

	client := alfhttp.NewClient(first.URL, nil)
	assert.Equal(t, first.URL, client.BaseURL())

	resp, err := client.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	client.SetBaseURL(second.URL + "/")
	assert.Equal(t, second.URL, client.BaseURL())

	resp, err = client.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "intercepted", request.Header.Get("X-Trace"))
		writer.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	var (
		calls      int
		lastStatus int
	)

	chain := alfresco.NewInterceptorChain()
	chain.AddRequestInterceptor(alfresco.HeaderInterceptor(map[string]string{"X-Trace": "intercepted"}))
	chain.AddResponseInterceptor(alfresco.ErrorObserverInterceptor(func(err error, statusCode int) {
		calls++
		lastStatus = statusCode

		assert.True(t, alfresco.IsUnauthorized(err))
	}))

	client := alfhttp.NewClient(server.URL, nil, alfhttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "/nodes/-root-", nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusUnauthorized, lastStatus)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Methods(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		method string
		fn     func(*alfhttp.Client, context.Context) (*alfhttp.Response, error)
	}{
		{
			name:   "GET",
			method: "GET",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.Get(ctx, "/test", nil)
			},
		},
		{
			name:   "POST",
			method: "POST",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.Post(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PUT",
			method: "PUT",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.Put(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "PATCH",
			method: "PATCH",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.Patch(ctx, "/test", map[string]string{"key": "value"})
			},
		},
		{
			name:   "DELETE",
			method: "DELETE",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.Delete(ctx, "/test")
			},
		},
		{
			name:   "DELETE with query",
			method: "DELETE",
			fn: func(c *alfhttp.Client, ctx context.Context) (*alfhttp.Response, error) {
				return c.DeleteWithQuery(ctx, "/test", url.Values{"cascade": []string{"true"}})
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, testCase.method, request.Method)
				assert.Equal(t, "/test", request.URL.Path)
				writer.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			client := alfhttp.NewClient(server.URL, nil)
			resp, err := testCase.fn(client, context.Background())
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		})
	}
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RetryLogic(t *testing.T) {
	t.Parallel()
	t.Run("retries on 5xx errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 3 {
				writer.WriteHeader(http.StatusInternalServerError)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil, alfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(3), attempts.Load())
	})

	t.Run("retries on rate limiting", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if attempts.Add(1) < 2 {
				writer.WriteHeader(http.StatusTooManyRequests)
			} else {
				writer.WriteHeader(http.StatusOK)
			}
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil, alfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})

	t.Run("does not retry on client errors", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil, alfhttp.WithRetryConfig(3, 10*time.Millisecond, 100*time.Millisecond))

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load()) // Should not retry
		assert.True(t, alfresco.IsUnauthorized(err))
	})

	t.Run("no retry option", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			attempts.Add(1)
			writer.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := alfhttp.NewClient(server.URL, nil, alfhttp.WithNoRetry())

		resp, err := client.Get(context.Background(), "/test", nil)
		require.Error(t, err)
		assert.Equal(t, 503, resp.StatusCode)
		assert.Equal(t, int32(1), attempts.Load())
	})
}
