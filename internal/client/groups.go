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

// GroupsClient implements alfresco.GroupsClient.
type GroupsClient struct {
	httpClient *http.Client
}

// NewGroupsClient creates a new groups client.
func NewGroupsClient(httpClient *http.Client) *GroupsClient {
	return &GroupsClient{
		httpClient: httpClient,
	}
}

// CreateGroup implements alfresco.GroupsClient.CreateGroup.
func (c *GroupsClient) CreateGroup(ctx context.Context, body *alfresco.GroupBodyCreate, opts *alfresco.ListOptions) (*alfresco.Group, error) {
	if body == nil {
		return nil, fmt.Errorf("%w: body", alfresco.ErrMissingParameter)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: nethttp.MethodPost,
		Path:   "/groups",
		Query:  entryQuery(opts),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("creating group: %w", err)
	}

	return parseGroup(resp.Body)
}

// GetGroups implements alfresco.GroupsClient.GetGroups.
func (c *GroupsClient) GetGroups(ctx context.Context, opts *alfresco.ListOptions) (*alfresco.ListResponse[alfresco.Group], error) {
	resp, err := c.httpClient.Get(ctx, "/groups", opts.ToValues())
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	var list alfresco.ListResponse[alfresco.Group]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing groups list: %w", err)
	}

	return &list, nil
}

// GetGroup implements alfresco.GroupsClient.GetGroup.
func (c *GroupsClient) GetGroup(ctx context.Context, groupID string, opts *alfresco.ListOptions) (*alfresco.Group, error) {
	err := requireParams(param{"groupID", groupID})
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, "/groups/"+url.PathEscape(groupID), entryQuery(opts))
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	return parseGroup(resp.Body)
}

// UpdateGroup implements alfresco.GroupsClient.UpdateGroup.
func (c *GroupsClient) UpdateGroup(ctx context.Context, groupID string, body *alfresco.GroupBodyUpdate, opts *alfresco.ListOptions) (*alfresco.Group, error) {
	err := requireParams(param{"groupID", groupID})
	if err != nil {
		return nil, err
	}

	if body == nil {
		return nil, fmt.Errorf("%w: body", alfresco.ErrMissingParameter)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: nethttp.MethodPut,
		Path:   "/groups/" + url.PathEscape(groupID),
		Query:  entryQuery(opts),
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("updating group: %w", err)
	}

	return parseGroup(resp.Body)
}

// DeleteGroup implements alfresco.GroupsClient.DeleteGroup.
// The cascade flag is always sent.
func (c *GroupsClient) DeleteGroup(ctx context.Context, groupID string, opts *alfresco.DeleteGroupOptions) error {
	err := requireParams(param{"groupID", groupID})
	if err != nil {
		return err
	}

	cascade := opts != nil && opts.Cascade
	query := url.Values{"cascade": {strconv.FormatBool(cascade)}}

	_, err = c.httpClient.DeleteWithQuery(ctx, "/groups/"+url.PathEscape(groupID), query)
	if err != nil {
		return fmt.Errorf("deleting group: %w", err)
	}

	return nil
}

// GetGroupMembers implements alfresco.GroupsClient.GetGroupMembers.
func (c *GroupsClient) GetGroupMembers(ctx context.Context, groupID string, opts *alfresco.ListOptions) (*alfresco.ListResponse[alfresco.GroupMember], error) {
	err := requireParams(param{"groupID", groupID})
	if err != nil {
		return nil, err
	}

	query := opts.ToValues()
	query.Del("include")

	resp, err := c.httpClient.Get(ctx, "/groups/"+url.PathEscape(groupID)+"/members", query)
	if err != nil {
		return nil, fmt.Errorf("listing group members: %w", err)
	}

	var list alfresco.ListResponse[alfresco.GroupMember]

	err = json.Unmarshal(resp.Body, &list)
	if err != nil {
		return nil, fmt.Errorf("parsing group members list: %w", err)
	}

	return &list, nil
}

// AddGroupMember implements alfresco.GroupsClient.AddGroupMember.
func (c *GroupsClient) AddGroupMember(ctx context.Context, groupID string, body *alfresco.GroupMembershipBodyCreate, opts *alfresco.ListOptions) (*alfresco.GroupMember, error) {
	err := requireParams(param{"groupID", groupID})
	if err != nil {
		return nil, err
	}

	if body == nil {
		return nil, fmt.Errorf("%w: body", alfresco.ErrMissingParameter)
	}

	var query url.Values
	if opts != nil && len(opts.Fields) > 0 {
		query = url.Values{}
		setCSV(query, "fields", opts.Fields)
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method: nethttp.MethodPost,
		Path:   "/groups/" + url.PathEscape(groupID) + "/members",
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, fmt.Errorf("adding group member: %w", err)
	}

	var entry alfresco.Entry[alfresco.GroupMember]

	err = json.Unmarshal(resp.Body, &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing group member: %w", err)
	}

	return &entry.Entry, nil
}

// DeleteGroupMember implements alfresco.GroupsClient.DeleteGroupMember.
func (c *GroupsClient) DeleteGroupMember(ctx context.Context, groupID, groupMemberID string) error {
	err := requireParams(param{"groupID", groupID}, param{"groupMemberID", groupMemberID})
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, "/groups/"+url.PathEscape(groupID)+"/members/"+url.PathEscape(groupMemberID))
	if err != nil {
		return fmt.Errorf("deleting group member: %w", err)
	}

	return nil
}

func parseGroup(body []byte) (*alfresco.Group, error) {
	var entry alfresco.Entry[alfresco.Group]

	err := json.Unmarshal(body, &entry)
	if err != nil {
		return nil, fmt.Errorf("parsing group: %w", err)
	}

	return &entry.Entry, nil
}
