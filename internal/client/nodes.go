package client

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// NodesClient implements alfresco.NodesClient.
type NodesClient struct {
	httpClient *http.Client
}

// NewNodesClient creates a new nodes client.
func NewNodesClient(httpClient *http.Client) *NodesClient {
	return &NodesClient{
		httpClient: httpClient,
	}
}

// CreateNode implements alfresco.NodesClient.CreateNode.
func (c *NodesClient) CreateNode(ctx context.Context, parentID string, body *alfresco.NodeBodyCreate, opts *alfresco.CreateNodeOptions) (*alfresco.Node, error) {
	err := requireParams(param{"parentID", parentID})
	if err != nil {
		return nil, err
	}

	if body == nil {
		return nil, fmt.Errorf("%w: body", alfresco.ErrMissingParameter)
	}

	query := url.Values{}
	if opts != nil {
		if opts.AutoRename {
			query.Set("autoRename", "true")
		}

		setCSV(query, "include", opts.Include)
		setCSV(query, "fields", opts.Fields)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: nethttp.MethodPost,
		Path:   "/nodes/" + url.PathEscape(parentID) + "/children",
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("creating node: %w", err)
	}

	var entry alfresco.Entry[alfresco.Node]

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing node: %w", err)
	}

	return &entry.Entry, nil
}

// GetNode implements alfresco.NodesClient.GetNode.
func (c *NodesClient) GetNode(ctx context.Context, nodeID string, opts *alfresco.ListOptions) (*alfresco.Node, error) {
	err := requireParams(param{"nodeID", nodeID})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/nodes/"+url.PathEscape(nodeID), entryQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("getting node: %w", err)
	}

	var entry alfresco.Entry[alfresco.Node]

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing node: %w", err)
	}

	return &entry.Entry, nil
}

// DeleteNode implements alfresco.NodesClient.DeleteNode.
func (c *NodesClient) DeleteNode(ctx context.Context, nodeID string, permanent bool) error {
	err := requireParams(param{"nodeID", nodeID})
	if err != nil {
		return err
	}

	var query url.Values
	if permanent {
		query = url.Values{"permanent": {strconv.FormatBool(permanent)}}
	}

	_, err = c.httpClient.DeleteWithQuery(ctx, "/nodes/"+url.PathEscape(nodeID), query)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	return nil
}
