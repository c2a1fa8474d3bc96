//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfrescoapi"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	HostEcm       string
	HostBpm       string
	AdminUser     string
	AdminPassword string
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		HostEcm:       os.Getenv("ALFRESCO_IT_HOST_ECM"),
		HostBpm:       os.Getenv("ALFRESCO_IT_HOST_BPM"),
		AdminUser:     envOrDefault("ALFRESCO_IT_USER", "admin"),
		AdminPassword: envOrDefault("ALFRESCO_IT_PASSWORD", "admin"),
		Verbose:       os.Getenv("ALFRESCO_IT_VERBOSE") == "true",
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.HostEcm == "" {
		t.Skip("ALFRESCO_IT_HOST_ECM not set, skipping integration test")
	}
}

// SkipIfNoProcessEngine skips test when no process engine is configured
func (config *TestConfig) SkipIfNoProcessEngine(t *testing.T) {
	t.Helper()

	if config.HostBpm == "" {
		t.Skip("ALFRESCO_IT_HOST_BPM not set, skipping process engine test")
	}
}

// NewSession creates a logged in session for provider
func (config *TestConfig) NewSession(t *testing.T, provider alfresco.Provider) *alfrescoapi.API {
	t.Helper()

	sessionConfig := &alfresco.Config{
		HostEcm:  config.HostEcm,
		HostBpm:  config.HostBpm,
		Provider: provider,
		Debug:    config.Verbose,
	}

	if config.Verbose {
		sessionConfig.Logger = testLogger{t: t}
	}

	api, err := alfrescoapi.New(sessionConfig)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = api.Login(ctx, config.AdminUser, config.AdminPassword)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = api.Logout(context.Background())
		api.Close()
	})

	return api
}

// GenerateTestName generates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

type testLogger struct {
	t *testing.T
}

func (l testLogger) Debug(msg string, fields map[string]interface{}) { l.t.Log("DEBUG", msg, fields) }
func (l testLogger) Info(msg string, fields map[string]interface{})  { l.t.Log("INFO", msg, fields) }
func (l testLogger) Warn(msg string, fields map[string]interface{})  { l.t.Log("WARN", msg, fields) }
func (l testLogger) Error(msg string, fields map[string]interface{}) { l.t.Log("ERROR", msg, fields) }
