package alfresco

import "context"

// NodesClient creates repository nodes.
type NodesClient interface {
	CreateNode(ctx context.Context, parentID string, body *NodeBodyCreate, opts *CreateNodeOptions) (*Node, error)
	GetNode(ctx context.Context, nodeID string, opts *ListOptions) (*Node, error)
	DeleteNode(ctx context.Context, nodeID string, permanent bool) error
}

// AssociationsClient manages peer associations between nodes.
type AssociationsClient interface {
	AddAssoc(ctx context.Context, sourceID string, body *AssocTargetBody) (*AssocEntry, error)
	ListSourceNodeAssociations(ctx context.Context, targetID string, opts *ListOptions) (*ListResponse[NodeAssociation], error)
	ListTargetAssociations(ctx context.Context, sourceID string, opts *ListOptions) (*ListResponse[NodeAssociation], error)
	RemoveAssoc(ctx context.Context, sourceID, targetID, assocType string) error
}

// GroupsClient manages repository groups and their members.
type GroupsClient interface {
	CreateGroup(ctx context.Context, body *GroupBodyCreate, opts *ListOptions) (*Group, error)
	GetGroups(ctx context.Context, opts *ListOptions) (*ListResponse[Group], error)
	GetGroup(ctx context.Context, groupID string, opts *ListOptions) (*Group, error)
	UpdateGroup(ctx context.Context, groupID string, body *GroupBodyUpdate, opts *ListOptions) (*Group, error)
	DeleteGroup(ctx context.Context, groupID string, opts *DeleteGroupOptions) error
	GetGroupMembers(ctx context.Context, groupID string, opts *ListOptions) (*ListResponse[GroupMember], error)
	AddGroupMember(ctx context.Context, groupID string, body *GroupMembershipBodyCreate, opts *ListOptions) (*GroupMember, error)
	DeleteGroupMember(ctx context.Context, groupID, groupMemberID string) error
}

// DiscoveryClient reads repository information.
type DiscoveryClient interface {
	GetRepositoryInformation(ctx context.Context) (*DiscoveryEntry, error)
}

// SearchClient runs repository searches.
type SearchClient interface {
	Search(ctx context.Context, request *SearchRequest) (*ListResponse[Node], error)
}

// ProfileClient reads the process engine profile of the current user.
type ProfileClient interface {
	GetProfile(ctx context.Context) (*UserProfile, error)
}

// ContentClient builds URLs that carry the content repository ticket, for
// use where headers cannot be set, such as links handed to a browser.
type ContentClient interface {
	ContentURL(nodeID string, attachment bool) string
	ThumbnailURL(nodeID string, attachment bool) string
	RenditionURL(nodeID, renditionID string, attachment bool) string
}
