package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/alfresco-client/internal/http"
	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// AssociationsClient implements alfresco.AssociationsClient.
type AssociationsClient struct {
	httpClient *http.Client
}

// NewAssociationsClient creates a new associations client.
func NewAssociationsClient(httpClient *http.Client) *AssociationsClient {
	return &AssociationsClient{
		httpClient: httpClient,
	}
}

// AddAssoc implements alfresco.AssociationsClient.AddAssoc.
func (c *AssociationsClient) AddAssoc(ctx context.Context, sourceID string, body *alfresco.AssocTargetBody) (*alfresco.AssocEntry, error) {
	err := requireParams(param{"sourceID", sourceID})
	if err != nil {
		return nil, err
	}

	if body == nil {
		return nil, fmt.Errorf("%w: body", alfresco.ErrMissingParameter)
	}

	resp, err := c.httpClient.Post(ctx, "/nodes/"+url.PathEscape(sourceID)+"/targets", body)
	if err != nil {
		return nil, fmt.Errorf("creating association: %w", err)
	}

	var entry alfresco.Entry[alfresco.AssocEntry]

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing association: %w", err)
	}

	return &entry.Entry, nil
}

// ListSourceNodeAssociations implements alfresco.AssociationsClient.ListSourceNodeAssociations.
func (c *AssociationsClient) ListSourceNodeAssociations(ctx context.Context, targetID string, opts *alfresco.ListOptions) (*alfresco.ListResponse[alfresco.NodeAssociation], error) {
	err := requireParams(param{"targetID", targetID})
	if err != nil {
		return nil, err
	}

	return c.list(ctx, "/nodes/"+url.PathEscape(targetID)+"/sources", opts)
}

// ListTargetAssociations implements alfresco.AssociationsClient.ListTargetAssociations.
func (c *AssociationsClient) ListTargetAssociations(ctx context.Context, sourceID string, opts *alfresco.ListOptions) (*alfresco.ListResponse[alfresco.NodeAssociation], error) {
	err := requireParams(param{"sourceID", sourceID})
	if err != nil {
		return nil, err
	}

	return c.list(ctx, "/nodes/"+url.PathEscape(sourceID)+"/targets", opts)
}

// RemoveAssoc implements alfresco.AssociationsClient.RemoveAssoc.
// An empty assocType removes every association between the two nodes.
func (c *AssociationsClient) RemoveAssoc(ctx context.Context, sourceID, targetID, assocType string) error {
	err := requireParams(param{"sourceID", sourceID}, param{"targetID", targetID})
	if err != nil {
		return err
	}

	var query url.Values
	if assocType != "" {
		query = url.Values{"assocType": {assocType}}
	}

	path := "/nodes/" + url.PathEscape(sourceID) + "/targets/" + url.PathEscape(targetID)

	_, err = c.httpClient.DeleteWithQuery(ctx, path, query)
	if err != nil {
		return fmt.Errorf("removing association: %w", err)
	}

	return nil
}

// list only forwards where, include and fields; association listings are not paged.
func (c *AssociationsClient) list(ctx context.Context, path string, opts *alfresco.ListOptions) (*alfresco.ListResponse[alfresco.NodeAssociation], error) {
	query := entryQuery(opts)
	if opts != nil && opts.Where != "" {
		query.Set("where", opts.Where)
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, fmt.Errorf("listing associations: %w", err)
	}

	var list alfresco.ListResponse[alfresco.NodeAssociation]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing associations list: %w", err)
	}

	return &list, nil
}
