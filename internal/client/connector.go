package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// ConnectorRequest represents the request body for creating a connector
type ConnectorRequest struct {
	Name                    string         `json:"name"`
	Source                  string         `json:"source"`
	InputType               string         `json:"input_type"`
	ConnectorSpecificConfig map[string]any `json:"connector_specific_config"`
	RefreshFreq             *int           `json:"refresh_freq,omitempty"`
	PruneFreq               *int           `json:"prune_freq,omitempty"`
	IsPublic                bool           `json:"is_public"`
	Groups                  []int          `json:"groups"`
}

// ObjectCreatedResponse is returned by endpoints that create an object
type ObjectCreatedResponse struct {
	ID int `json:"id"`
}

// CreateConnector creates a new connector
func (c *Client) CreateConnector(ctx context.Context, user *User, req *ConnectorRequest) (*ObjectCreatedResponse, error) {
	var result ObjectCreatedResponse
	if err := c.do(ctx, user, http.MethodPost, "/manage/admin/connector", req, &result); err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	tflog.Info(ctx, "Created connector", map[string]any{"id": result.ID, "name": req.Name})
	return &result, nil
}
