package client

import (
	"context"

	"github.com/elusion/briq-go/internal/constants"
	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/validation"
	"github.com/elusion/briq-go/pkg/briq"
)

// CampaignsClient implements briq.CampaignsClient.
type CampaignsClient struct {
	*ResourceClient[briq.Campaign, briq.CampaignCreate, briq.CampaignUpdate]
}

// NewCampaignsClient creates a new campaigns client.
func NewCampaignsClient(httpClient *briqhttp.Client) *CampaignsClient {
	return &CampaignsClient{
		ResourceClient: NewResourceClient[briq.Campaign, briq.CampaignCreate, briq.CampaignUpdate](
			httpClient, constants.CampaignsPath, "campaign",
			validation.CampaignCreate, validation.CampaignUpdate,
		),
	}
}

// List implements briq.CampaignsClient.List. WorkspaceID and Status narrow
// the listing when set.
func (c *CampaignsClient) List(ctx context.Context, params *briq.CampaignListParams) (*briq.PaginatedResponse[briq.Campaign], error) {
	if params == nil {
		params = &briq.CampaignListParams{}
	}

	return c.ResourceClient.List(ctx, queryOf(params))
}
