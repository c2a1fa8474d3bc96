package alfresco

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Pagination represents the paging block of a list response.
type Pagination struct {
	Count        int  `json:"count"                yaml:"count"`
	HasMoreItems bool `json:"hasMoreItems"         yaml:"has_more_items"`
	TotalItems   int  `json:"totalItems,omitempty" yaml:"total_items,omitempty"`
	SkipCount    int  `json:"skipCount"            yaml:"skip_count"`
	MaxItems     int  `json:"maxItems"             yaml:"max_items"`
}

// Entry wraps a single resource, as returned by the content repository.
type Entry[T any] struct {
	Entry T `json:"entry" yaml:"entry"`
}

// ListResponse represents a paginated list response.
type ListResponse[T any] struct {
	List struct {
		Pagination Pagination `json:"pagination" yaml:"pagination"`
		Entries    []Entry[T] `json:"entries"    yaml:"entries"`
	} `json:"list" yaml:"list"`
}

// Items returns the unwrapped entries of the list.
func (l *ListResponse[T]) Items() []T {
	items := make([]T, 0, len(l.List.Entries))
	for _, entry := range l.List.Entries {
		items = append(items, entry.Entry)
	}

	return items
}

// ListOptions carries the common query parameters of list and get calls.
// Zero values are omitted from the query.
type ListOptions struct {
	SkipCount int
	MaxItems  int
	OrderBy   []string
	Where     string
	Include   []string
	Fields    []string
}

// ToValues converts the options to query parameters. Collections are sent
// as comma separated values.
func (o *ListOptions) ToValues() url.Values {
	values := url.Values{}
	if o == nil {
		return values
	}

	if o.SkipCount > 0 {
		values.Set("skipCount", strconv.Itoa(o.SkipCount))
	}

	if o.MaxItems > 0 {
		values.Set("maxItems", strconv.Itoa(o.MaxItems))
	}

	setCSV(values, "orderBy", o.OrderBy)

	if o.Where != "" {
		values.Set("where", o.Where)
	}

	setCSV(values, "include", o.Include)
	setCSV(values, "fields", o.Fields)

	return values
}

func setCSV(values url.Values, key string, items []string) {
	if len(items) > 0 {
		values.Set(key, strings.Join(items, ","))
	}
}

// UserInfo identifies the user that created or modified a node.
type UserInfo struct {
	ID          string `json:"id"          yaml:"id"`
	DisplayName string `json:"displayName" yaml:"display_name"`
}

// ContentInfo describes the content of a file node.
type ContentInfo struct {
	MimeType     string `json:"mimeType"               yaml:"mime_type"`
	MimeTypeName string `json:"mimeTypeName,omitempty" yaml:"mime_type_name,omitempty"`
	SizeInBytes  int64  `json:"sizeInBytes,omitempty"  yaml:"size_in_bytes,omitempty"`
	Encoding     string `json:"encoding,omitempty"     yaml:"encoding,omitempty"`
}

// Node represents a repository node.
type Node struct {
	ID             string                 `json:"id"                       yaml:"id"`
	Name           string                 `json:"name"                     yaml:"name"`
	NodeType       string                 `json:"nodeType"                 yaml:"node_type"`
	IsFolder       bool                   `json:"isFolder"                 yaml:"is_folder"`
	IsFile         bool                   `json:"isFile"                   yaml:"is_file"`
	IsLocked       bool                   `json:"isLocked,omitempty"       yaml:"is_locked,omitempty"`
	ModifiedAt     *time.Time             `json:"modifiedAt,omitempty"     yaml:"modified_at,omitempty"`
	ModifiedByUser *UserInfo              `json:"modifiedByUser,omitempty" yaml:"modified_by_user,omitempty"`
	CreatedAt      *time.Time             `json:"createdAt,omitempty"      yaml:"created_at,omitempty"`
	CreatedByUser  *UserInfo              `json:"createdByUser,omitempty"  yaml:"created_by_user,omitempty"`
	ParentID       string                 `json:"parentId,omitempty"       yaml:"parent_id,omitempty"`
	AspectNames    []string               `json:"aspectNames,omitempty"    yaml:"aspect_names,omitempty"`
	Properties     map[string]interface{} `json:"properties,omitempty"     yaml:"properties,omitempty"`
	Content        *ContentInfo           `json:"content,omitempty"        yaml:"content,omitempty"`
}

// AssociationInfo describes how a node in an association listing is related.
type AssociationInfo struct {
	AssocType string `json:"assocType" yaml:"assoc_type"`
}

// NodeAssociation is a node together with the association that links it.
type NodeAssociation struct {
	Node        `yaml:",inline"`
	Association *AssociationInfo `json:"association,omitempty" yaml:"association,omitempty"`
}

// NodeBodyCreateAssociation sets the type of the primary parent association.
type NodeBodyCreateAssociation struct {
	AssocType string `json:"assocType,omitempty" yaml:"assoc_type,omitempty"`
}

// ChildAssociationBody links a secondary child to a new node.
type ChildAssociationBody struct {
	ChildID   string `json:"childId"   yaml:"child_id"`
	AssocType string `json:"assocType" yaml:"assoc_type"`
}

// AssociationBody links a peer target to a new node.
type AssociationBody struct {
	TargetID  string `json:"targetId"  yaml:"target_id"`
	AssocType string `json:"assocType" yaml:"assoc_type"`
}

// NodeBodyCreate is the request body for creating a node.
type NodeBodyCreate struct {
	Name              string                     `json:"name"                        yaml:"name"`
	NodeType          string                     `json:"nodeType"                    yaml:"node_type"`
	AspectNames       []string                   `json:"aspectNames,omitempty"       yaml:"aspect_names,omitempty"`
	Properties        map[string]string          `json:"properties,omitempty"        yaml:"properties,omitempty"`
	RelativePath      string                     `json:"relativePath,omitempty"      yaml:"relative_path,omitempty"`
	Association       *NodeBodyCreateAssociation `json:"association,omitempty"       yaml:"association,omitempty"`
	SecondaryChildren []ChildAssociationBody     `json:"secondaryChildren,omitempty" yaml:"secondary_children,omitempty"`
	Targets           []AssociationBody          `json:"targets,omitempty"           yaml:"targets,omitempty"`
}

// CreateNodeOptions are the query parameters of a node creation.
type CreateNodeOptions struct {
	AutoRename bool
	Include    []string
	Fields     []string
}

// AssocTargetBody is the request body for creating a peer association.
type AssocTargetBody struct {
	TargetID  string `json:"targetId"  yaml:"target_id"`
	AssocType string `json:"assocType" yaml:"assoc_type"`
}

// AssocEntry is the response of a peer association creation.
type AssocEntry struct {
	TargetID  string `json:"targetId"  yaml:"target_id"`
	AssocType string `json:"assocType" yaml:"assoc_type"`
}

// Group represents a repository group.
type Group struct {
	ID           string   `json:"id"                     yaml:"id"`
	DisplayName  string   `json:"displayName"            yaml:"display_name"`
	IsRoot       bool     `json:"isRoot"                 yaml:"is_root"`
	ParentIDs    []string `json:"parentIds,omitempty"    yaml:"parent_ids,omitempty"`
	ZoneIDs      []string `json:"zones,omitempty"        yaml:"zones,omitempty"`
	HasSubgroups bool     `json:"hasSubgroups,omitempty" yaml:"has_subgroups,omitempty"`
}

// GroupBodyCreate is the request body for creating a group.
type GroupBodyCreate struct {
	ID          string   `json:"id"                  yaml:"id"`
	DisplayName string   `json:"displayName"         yaml:"display_name"`
	ParentIDs   []string `json:"parentIds,omitempty" yaml:"parent_ids,omitempty"`
}

// GroupBodyUpdate is the request body for updating a group.
type GroupBodyUpdate struct {
	DisplayName string `json:"displayName" yaml:"display_name"`
}

// GroupMember represents a member of a group, either a person or a group.
type GroupMember struct {
	ID          string `json:"id"          yaml:"id"`
	DisplayName string `json:"displayName" yaml:"display_name"`
	MemberType  string `json:"memberType"  yaml:"member_type"`
}

// GroupMembershipBodyCreate is the request body for adding a group member.
type GroupMembershipBodyCreate struct {
	ID         string `json:"id"         yaml:"id"`
	MemberType string `json:"memberType" yaml:"member_type"`
}

// DeleteGroupOptions are the query parameters of a group deletion.
type DeleteGroupOptions struct {
	Cascade bool
}

// RepositoryInfo is returned by the discovery API.
type RepositoryInfo struct {
	Edition string `json:"edition" yaml:"edition"`
	ID      string `json:"id"      yaml:"id"`
	Version struct {
		Major   string `json:"major"   yaml:"major"`
		Minor   string `json:"minor"   yaml:"minor"`
		Patch   string `json:"patch"   yaml:"patch"`
		Hotfix  string `json:"hotfix"  yaml:"hotfix"`
		Display string `json:"display" yaml:"display"`
	} `json:"version" yaml:"version"`
	Status struct {
		IsReadOnly bool `json:"isReadOnly" yaml:"is_read_only"`
	} `json:"status" yaml:"status"`
}

// DiscoveryEntry is the envelope of the discovery response.
type DiscoveryEntry struct {
	Entry struct {
		Repository RepositoryInfo `json:"repository" yaml:"repository"`
	} `json:"entry" yaml:"entry"`
}

// SearchQuery is the query block of a search request.
type SearchQuery struct {
	Query    string `json:"query"              yaml:"query"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}

// SearchPaging limits a search request.
type SearchPaging struct {
	MaxItems  int `json:"maxItems"  yaml:"max_items"`
	SkipCount int `json:"skipCount" yaml:"skip_count"`
}

// SearchRequest is the request body of a search.
type SearchRequest struct {
	Query   SearchQuery   `json:"query"             yaml:"query"`
	Paging  *SearchPaging `json:"paging,omitempty"  yaml:"paging,omitempty"`
	Include []string      `json:"include,omitempty" yaml:"include,omitempty"`
	Fields  []string      `json:"fields,omitempty"  yaml:"fields,omitempty"`
}

// UserProfile is the process engine profile of the logged in user.
type UserProfile struct {
	ID        int    `json:"id"                  yaml:"id"`
	FirstName string `json:"firstName,omitempty" yaml:"first_name,omitempty"`
	LastName  string `json:"lastName,omitempty"  yaml:"last_name,omitempty"`
	Email     string `json:"email,omitempty"     yaml:"email,omitempty"`
	TenantID  int    `json:"tenantId,omitempty"  yaml:"tenant_id,omitempty"`
	Type      string `json:"type,omitempty"      yaml:"type,omitempty"`
	Status    string `json:"status,omitempty"    yaml:"status,omitempty"`
}

// LoginResult reports the credentials held after a successful login.
// Only the fields of the active mode are set.
type LoginResult struct {
	TicketEcm   string `json:"ticketEcm,omitempty"   yaml:"ticket_ecm,omitempty"`
	TicketBpm   string `json:"ticketBpm,omitempty"   yaml:"ticket_bpm,omitempty"`
	AccessToken string `json:"accessToken,omitempty" yaml:"access_token,omitempty"`
}

// ImplicitLogin is the pending first phase of an OAuth2 implicit login.
// Send the user agent to AuthorizationURL, then feed the redirect back to
// CompleteImplicitLogin.
type ImplicitLogin struct {
	AuthorizationURL string `json:"authorizationUrl" yaml:"authorization_url"`
	State            string `json:"state"            yaml:"state"`
	Nonce            string `json:"nonce"            yaml:"nonce"`
}
