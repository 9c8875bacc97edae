package client

import (
	"context"

	"github.com/elusion/briq-go/internal/constants"
	briqhttp "github.com/elusion/briq-go/internal/http"
	"github.com/elusion/briq-go/internal/validation"
	"github.com/elusion/briq-go/pkg/briq"
)

// WorkspacesClient implements briq.WorkspacesClient.
type WorkspacesClient struct {
	*ResourceClient[briq.Workspace, briq.WorkspaceCreate, briq.WorkspaceUpdate]
}

// NewWorkspacesClient creates a new workspaces client.
func NewWorkspacesClient(httpClient *briqhttp.Client) *WorkspacesClient {
	return &WorkspacesClient{
		ResourceClient: NewResourceClient[briq.Workspace, briq.WorkspaceCreate, briq.WorkspaceUpdate](
			httpClient, constants.WorkspacesPath, "workspace",
			validation.WorkspaceCreate, validation.WorkspaceUpdate,
		),
	}
}

// List implements briq.WorkspacesClient.List.
func (c *WorkspacesClient) List(ctx context.Context, params *briq.WorkspaceListParams) (*briq.PaginatedResponse[briq.Workspace], error) {
	if params == nil {
		params = &briq.WorkspaceListParams{}
	}

	return c.ResourceClient.List(ctx, queryOf(params))
}
