package client

import (
	"net/url"
	"strconv"
)

// ContentClient implements alfresco.ContentClient. The ticket is read on
// every call so URLs always carry the current one.
type ContentClient struct {
	baseURL func() string
	ticket  func() string
}

// NewContentClient creates a content URL builder. baseURL returns the public
// content repository API root and ticket the current repository ticket.
func NewContentClient(baseURL, ticket func() string) *ContentClient {
	return &ContentClient{
		baseURL: baseURL,
		ticket:  ticket,
	}
}

// ContentURL returns the URL of the content of a node.
func (c *ContentClient) ContentURL(nodeID string, attachment bool) string {
	return c.build("/nodes/"+url.PathEscape(nodeID)+"/content", attachment)
}

// ThumbnailURL returns the URL of the document library thumbnail of a node.
func (c *ContentClient) ThumbnailURL(nodeID string, attachment bool) string {
	return c.RenditionURL(nodeID, "doclib", attachment)
}

// RenditionURL returns the URL of a rendition of a node.
func (c *ContentClient) RenditionURL(nodeID, renditionID string, attachment bool) string {
	path := "/nodes/" + url.PathEscape(nodeID) + "/renditions/" + url.PathEscape(renditionID) + "/content"

	return c.build(path, attachment)
}

func (c *ContentClient) build(path string, attachment bool) string {
	query := url.Values{}
	query.Set("attachment", strconv.FormatBool(attachment))

	if ticket := c.ticket(); ticket != "" {
		query.Set("alf_ticket", ticket)
	}

	return c.baseURL() + path + "?" + query.Encode()
}
