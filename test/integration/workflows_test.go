//go:build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/alfresco-client/pkg/alfresco"
)

// TestNodeWorkflow creates two folders, links them and cleans up.
func TestNodeWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	api := config.NewSession(t, alfresco.ProviderECM)
	ctx := context.Background()

	source, err := api.Nodes().CreateNode(ctx, "-my-", &alfresco.NodeBodyCreate{
		Name:     GenerateTestName("it-source"),
		NodeType: "cm:folder",
	}, nil)
	require.NoError(t, err)

	defer func() { _ = api.Nodes().DeleteNode(ctx, source.ID, true) }()

	target, err := api.Nodes().CreateNode(ctx, "-my-", &alfresco.NodeBodyCreate{
		Name:     GenerateTestName("it-target"),
		NodeType: "cm:content",
	}, nil)
	require.NoError(t, err)

	defer func() { _ = api.Nodes().DeleteNode(ctx, target.ID, true) }()

	_, err = api.Associations().AddAssoc(ctx, source.ID, &alfresco.AssocTargetBody{
		TargetID:  target.ID,
		AssocType: "cm:references",
	})
	require.NoError(t, err)

	targets, err := api.Associations().ListTargetAssociations(ctx, source.ID, nil)
	require.NoError(t, err)
	require.Len(t, targets.Items(), 1)
	assert.Equal(t, target.ID, targets.Items()[0].ID)

	sources, err := api.Associations().ListSourceNodeAssociations(ctx, target.ID, nil)
	require.NoError(t, err)
	require.Len(t, sources.Items(), 1)

	require.NoError(t, api.Associations().RemoveAssoc(ctx, source.ID, target.ID, "cm:references"))
}

// TestGroupWorkflow runs a group through its lifecycle.
func TestGroupWorkflow(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)

	api := config.NewSession(t, alfresco.ProviderECM)
	ctx := context.Background()

	groupID := "GROUP_" + GenerateTestName("it")

	group, err := api.Groups().CreateGroup(ctx, &alfresco.GroupBodyCreate{ID: groupID, DisplayName: "Integration"}, nil)
	require.NoError(t, err)

	defer func() { _ = api.Groups().DeleteGroup(ctx, group.ID, &alfresco.DeleteGroupOptions{Cascade: true}) }()

	_, err = api.Groups().UpdateGroup(ctx, group.ID, &alfresco.GroupBodyUpdate{DisplayName: "Integration renamed"}, nil)
	require.NoError(t, err)

	_, err = api.Groups().AddGroupMember(ctx, group.ID, &alfresco.GroupMembershipBodyCreate{
		ID:         config.AdminUser,
		MemberType: "PERSON",
	}, nil)
	require.NoError(t, err)

	members, err := api.Groups().GetGroupMembers(ctx, group.ID, nil)
	require.NoError(t, err)
	assert.Len(t, members.Items(), 1)

	require.NoError(t, api.Groups().DeleteGroupMember(ctx, group.ID, config.AdminUser))
}

// TestDualLogin logs in to both backends and reads the process engine profile.
func TestDualLogin(t *testing.T) {
	config := LoadTestConfig()
	config.SkipIfMissingConfig(t)
	config.SkipIfNoProcessEngine(t)

	api := config.NewSession(t, alfresco.ProviderAll)

	assert.True(t, api.IsEcmLoggedIn())
	assert.True(t, api.IsBpmLoggedIn())

	profile, err := api.Profile().GetProfile(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, profile.ID)
}
