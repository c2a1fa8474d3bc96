package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// SearchClient implements alfresco.SearchClient.
type SearchClient struct {
	httpClient *http.Client
}

// NewSearchClient creates a new search client.
func NewSearchClient(httpClient *http.Client) *SearchClient {
	return &SearchClient{
		httpClient: httpClient,
	}
}

// Search implements alfresco.SearchClient.Search.
func (c *SearchClient) Search(ctx context.Context, request *alfresco.SearchRequest) (*alfresco.ListResponse[alfresco.Node], error) {
	if request == nil || request.Query.Query == "" {
		return nil, fmt.Errorf("%w: query", alfresco.ErrMissingParameter)
	}

	resp, err := c.httpClient.Post(ctx, "/search", request)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}

	var list alfresco.ListResponse[alfresco.Node]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	return &list, nil
}
