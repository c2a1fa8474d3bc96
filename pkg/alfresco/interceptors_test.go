package alfresco_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errInterceptorRejected = errors.New("rejected")

type recordingLogger struct {
	entries []string
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) {
	l.entries = append(l.entries, "debug:"+msg)
}

func (l *recordingLogger) Info(msg string, _ map[string]interface{}) {
	l.entries = append(l.entries, "info:"+msg)
}

func (l *recordingLogger) Warn(msg string, _ map[string]interface{}) {
	l.entries = append(l.entries, "warn:"+msg)
}

func (l *recordingLogger) Error(msg string, _ map[string]interface{}) {
	l.entries = append(l.entries, "error:"+msg)
}

func TestInterceptorChain_RequestInterceptors(t *testing.T) {
	t.Parallel()

	chain := alfresco.NewInterceptorChain()
	ctx := context.Background()

	var executionOrder []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *alfresco.Request) error {
		executionOrder = append(executionOrder, "first")

		return nil
	})

	chain.AddRequestInterceptor(func(ctx context.Context, req *alfresco.Request) error {
		executionOrder = append(executionOrder, "second")

		return nil
	})

	err := chain.ExecuteRequestInterceptors(ctx, &alfresco.Request{Method: "GET", Path: "/nodes"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, executionOrder)
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := alfresco.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *alfresco.Request) error {
		return errInterceptorRejected
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *alfresco.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &alfresco.Request{})
	require.ErrorIs(t, err, errInterceptorRejected)
	assert.False(t, called)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	req := &alfresco.Request{Method: "GET", Path: "/nodes"}

	err := alfresco.HeaderInterceptor(map[string]string{"X-Tenant": "acme"})(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "acme", req.Headers.Get("X-Tenant"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	ctx := context.Background()
	req := &alfresco.Request{Method: "GET", Path: "/nodes"}

	require.NoError(t, alfresco.LoggingInterceptor(logger)(ctx, req))
	require.NoError(t, alfresco.LoggingResponseInterceptor(logger)(ctx, req, &alfresco.Response{StatusCode: 200}))
	require.NoError(t, alfresco.LoggingResponseInterceptor(logger)(ctx, req, &alfresco.Response{
		StatusCode: 500,
		Error:      errInterceptorRejected,
	}))

	assert.Equal(t, []string{"debug:API Request", "debug:API Response", "error:API Response Error"}, logger.entries)
}

func TestErrorObserverInterceptor(t *testing.T) {
	t.Parallel()

	var observed []int

	observer := alfresco.ErrorObserverInterceptor(func(err error, statusCode int) {
		observed = append(observed, statusCode)
	})

	ctx := context.Background()
	req := &alfresco.Request{}

	require.NoError(t, observer(ctx, req, &alfresco.Response{StatusCode: 200}))
	require.NoError(t, observer(ctx, req, &alfresco.Response{StatusCode: 401, Error: &alfresco.APIError{StatusCode: 401}}))

	assert.Equal(t, []int{401}, observed)
}

func TestListOptions_ToValues(t *testing.T) {
	t.Parallel()

	var nilOptions *alfresco.ListOptions
	assert.Empty(t, nilOptions.ToValues())

	values := (&alfresco.ListOptions{
		SkipCount: 10,
		MaxItems:  5,
		OrderBy:   []string{"displayName ASC"},
		Where:     "(isRoot=true)",
		Include:   []string{"parentIds", "zones"},
		Fields:    []string{"id", "displayName"},
	}).ToValues()

	assert.Equal(t, "10", values.Get("skipCount"))
	assert.Equal(t, "5", values.Get("maxItems"))
	assert.Equal(t, "displayName ASC", values.Get("orderBy"))
	assert.Equal(t, "(isRoot=true)", values.Get("where"))
	assert.Equal(t, "parentIds,zones", values.Get("include"))
	assert.Equal(t, "id,displayName", values.Get("fields"))
}
