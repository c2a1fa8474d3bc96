package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// ProfileClient implements alfresco.ProfileClient against the process engine.
type ProfileClient struct {
	httpClient *http.Client
}

// NewProfileClient creates a new profile client.
func NewProfileClient(httpClient *http.Client) *ProfileClient {
	return &ProfileClient{
		httpClient: httpClient,
	}
}

// GetProfile implements alfresco.ProfileClient.GetProfile.
func (c *ProfileClient) GetProfile(ctx context.Context) (*alfresco.UserProfile, error) {
	resp, err := c.httpClient.Get(ctx, "/enterprise/profile", nil)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	var profile alfresco.UserProfile

	err = json.Unmarshal(resp.Body, &profile)
	if err != nil {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	return &profile, nil
}
