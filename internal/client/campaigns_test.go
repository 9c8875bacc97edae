package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elusion/briq-go/pkg/briq"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestCampaignsClient(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newOpenClient(t, server.URL)
	ctx := context.Background()

	workspace, err := client.Workspaces().Create(ctx, &briq.WorkspaceCreate{Name: "Retail"})
	require.NoError(t, err)

	other, err := client.Workspaces().Create(ctx, &briq.WorkspaceCreate{Name: "Wholesale"})
	require.NoError(t, err)

	launch := time.Date(2025, time.July, 1, 10, 0, 0, 0, time.UTC)

	campaign, err := client.Campaigns().Create(ctx, &briq.CampaignCreate{
		WorkspaceID: workspace.ID,
		Name:        "Test Campaign",
		Description: "This is a test campaign",
		LaunchDate:  &launch,
	})
	require.NoError(t, err)
	assert.Equal(t, briq.CampaignStatusDraft, campaign.Status)
	require.NotNil(t, campaign.LaunchDate)
	assert.True(t, launch.Equal(*campaign.LaunchDate))

	_, err = client.Campaigns().Create(ctx, &briq.CampaignCreate{WorkspaceID: other.ID, Name: "Elsewhere"})
	require.NoError(t, err)

	t.Run("list filters by workspace", func(t *testing.T) {
		page, err := client.Campaigns().List(ctx, &briq.CampaignListParams{WorkspaceID: workspace.ID})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, campaign.ID, page.Items[0].ID)
	})

	t.Run("update status and launch date", func(t *testing.T) {
		relaunch := launch.Add(14 * 24 * time.Hour)

		updated, err := client.Campaigns().Update(ctx, campaign.ID, &briq.CampaignUpdate{
			Status:     strPtr(briq.CampaignStatusScheduled),
			LaunchDate: &relaunch,
		})
		require.NoError(t, err)
		assert.Equal(t, briq.CampaignStatusScheduled, updated.Status)
		assert.Equal(t, "Test Campaign", updated.Name)
		assert.True(t, relaunch.Equal(*updated.LaunchDate))

		page, err := client.Campaigns().List(ctx, &briq.CampaignListParams{Status: briq.CampaignStatusScheduled})
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
	})

	t.Run("server-side validation uses the same error shape", func(t *testing.T) {
		_, err := client.Campaigns().Create(ctx, &briq.CampaignCreate{WorkspaceID: "missing-workspace", Name: "Orphan"})

		var validationErr *briq.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.False(t, validationErr.Local())
		assert.Equal(t, http.StatusUnprocessableEntity, validationErr.StatusCode)

		detail, ok := validationErr.Field("workspace_id")
		require.True(t, ok)
		assert.Equal(t, "not_found", detail.Code)
	})

	t.Run("local validation", func(t *testing.T) {
		before := server.Requests()

		_, err := client.Campaigns().Create(ctx, &briq.CampaignCreate{Name: "No workspace"})
		assert.True(t, briq.IsValidation(err))

		_, err = client.Campaigns().Update(ctx, campaign.ID, &briq.CampaignUpdate{Status: strPtr("paused")})
		assert.True(t, briq.IsValidation(err))

		assert.Equal(t, before, server.Requests())
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.Campaigns().Delete(ctx, campaign.ID))

		_, err := client.Campaigns().Get(ctx, campaign.ID)
		assert.True(t, briq.IsNotFound(err))
	})
}

func TestCampaignsClient_MalformedListItem(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{
			"success": true,
			"data": {
				"items": [{"id": "cmp-1", "name": "ok"}, {"name": "missing id"}],
				"pagination": {"page": 1, "per_page": 20, "total_items": 2, "total_pages": 1}
			}
		}`))
	}))
	defer server.Close()

	client := newOpenClient(t, server.URL)

	page, err := client.Campaigns().List(context.Background(), nil)
	assert.Nil(t, page)

	var malformed *briq.MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	assert.Contains(t, malformed.Error(), "items.1.id")
}
