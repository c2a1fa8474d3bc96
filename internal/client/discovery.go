package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// DiscoveryClient implements alfresco.DiscoveryClient.
type DiscoveryClient struct {
	httpClient *http.Client
}

// NewDiscoveryClient creates a new discovery client.
func NewDiscoveryClient(httpClient *http.Client) *DiscoveryClient {
	return &DiscoveryClient{
		httpClient: httpClient,
	}
}

// GetRepositoryInformation implements alfresco.DiscoveryClient.GetRepositoryInformation.
func (c *DiscoveryClient) GetRepositoryInformation(ctx context.Context) (*alfresco.DiscoveryEntry, error) {
	resp, err := c.httpClient.Get(ctx, "/discovery", nil)
	if err != nil {
		return nil, fmt.Errorf("getting repository information: %w", err)
	}

	var discovery alfresco.DiscoveryEntry

	err = json.Unmarshal(resp.Body, &discovery)
	if err != nil {
		return nil, fmt.Errorf("parsing repository information: %w", err)
	}

	return &discovery, nil
}
