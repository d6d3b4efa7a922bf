package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// CredentialRequest represents the request body for creating a credential
type CredentialRequest struct {
	Name           string         `json:"name"`
	Source         string         `json:"source"`
	CredentialJSON map[string]any `json:"credential_json"`
	AdminPublic    bool           `json:"admin_public"`
	CuratorPublic  bool           `json:"curator_public"`
	Groups         []int          `json:"groups"`
}

// CreateCredential creates a new credential
func (c *Client) CreateCredential(ctx context.Context, user *User, req *CredentialRequest) (*ObjectCreatedResponse, error) {
	var result ObjectCreatedResponse
	if err := c.do(ctx, user, http.MethodPost, "/manage/credential", req, &result); err != nil {
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	tflog.Info(ctx, "Created credential", map[string]any{"id": result.ID, "name": req.Name})
	return &result, nil
}
