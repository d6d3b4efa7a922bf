package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// CCPairRequest represents the request body for associating a credential with a connector
type CCPairRequest struct {
	Name       string     `json:"name"`
	AccessType AccessType `json:"access_type"`
	Groups     []int      `json:"groups"`
}

// CCPairCreatedResponse is the status envelope returned when a CC pair is created
type CCPairCreatedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    int    `json:"data"`
}

// CCPairStatusRequest represents the request body for changing a CC pair's status
type CCPairStatusRequest struct {
	Status CCPairStatus `json:"status"`
}

// RunOnceRequest represents the request body for triggering a single indexing run
type RunOnceRequest struct {
	ConnectorID   int   `json:"connector_id"`
	CredentialIDs []int `json:"credential_ids"`
	FromBeginning bool  `json:"from_beginning"`
}

// DeletionAttemptRequest identifies the CC pair to delete
type DeletionAttemptRequest struct {
	ConnectorID  int `json:"connector_id"`
	CredentialID int `json:"credential_id"`
}

// ObjectRef is the embedded connector or credential in an indexing status entry
type ObjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// IndexingStatus is one entry of the connector indexing status listing
type IndexingStatus struct {
	CCPairID     int          `json:"cc_pair_id"`
	Name         string       `json:"name"`
	CCPairStatus CCPairStatus `json:"cc_pair_status"`
	Connector    ObjectRef    `json:"connector"`
	Credential   ObjectRef    `json:"credential"`
	AccessType   AccessType   `json:"access_type"`
	Groups       []int        `json:"groups"`
	InProgress   bool         `json:"in_progress"`
	LastSuccess  *Timestamp   `json:"last_success"`
	LastStatus   string       `json:"last_status,omitempty"`
	DocsIndexed  int          `json:"docs_indexed"`
	ErrorMsg     string       `json:"error_msg,omitempty"`
	IsDeletable  bool         `json:"is_deletable"`
}

// TaskStatusResponse describes a background task registered for a CC pair
type TaskStatusResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Status       TaskStatus `json:"status"`
	StartTime    *Timestamp `json:"start_time"`
	RegisterTime *Timestamp `json:"register_time"`
}

// CreateCCPair associates a credential with a connector and returns the new CC pair ID
func (c *Client) CreateCCPair(ctx context.Context, user *User, connectorID, credentialID int, req *CCPairRequest) (int, error) {
	var result CCPairCreatedResponse
	path := fmt.Sprintf("/manage/connector/%d/credential/%d", connectorID, credentialID)
	if err := c.do(ctx, user, http.MethodPut, path, req, &result); err != nil {
		return 0, fmt.Errorf("failed to create cc pair: %w", err)
	}

	tflog.Info(ctx, "Created cc pair", map[string]any{"id": result.Data, "name": req.Name})
	return result.Data, nil
}

// UpdateCCPairStatus sets the status of a CC pair, e.g. to pause it
func (c *Client) UpdateCCPairStatus(ctx context.Context, user *User, id int, status CCPairStatus) error {
	path := fmt.Sprintf("/manage/admin/cc-pair/%d/status", id)
	if err := c.do(ctx, user, http.MethodPut, path, &CCPairStatusRequest{Status: status}, nil); err != nil {
		return fmt.Errorf("failed to update cc pair status: %w", err)
	}

	tflog.Info(ctx, "Updated cc pair status", map[string]any{"id": id, "status": string(status)})
	return nil
}

// RunOnce triggers a single indexing run for the given connector and credentials
func (c *Client) RunOnce(ctx context.Context, user *User, req *RunOnceRequest) error {
	if err := c.do(ctx, user, http.MethodPost, "/manage/admin/connector/run-once", req, nil); err != nil {
		return fmt.Errorf("failed to trigger indexing run: %w", err)
	}

	tflog.Info(ctx, "Triggered indexing run", map[string]any{"connector_id": req.ConnectorID})
	return nil
}

// Prune triggers pruning of a CC pair
func (c *Client) Prune(ctx context.Context, user *User, id int) error {
	if err := c.do(ctx, user, http.MethodPost, fmt.Sprintf("/manage/admin/cc-pair/%d/prune", id), nil, nil); err != nil {
		return fmt.Errorf("failed to trigger prune: %w", err)
	}

	tflog.Info(ctx, "Triggered prune", map[string]any{"id": id})
	return nil
}

// Sync triggers a permission sync of a CC pair
func (c *Client) Sync(ctx context.Context, user *User, id int) error {
	if err := c.do(ctx, user, http.MethodPost, fmt.Sprintf("/manage/admin/cc-pair/%d/sync", id), nil, nil); err != nil {
		return fmt.Errorf("failed to trigger sync: %w", err)
	}

	tflog.Info(ctx, "Triggered sync", map[string]any{"id": id})
	return nil
}

// CreateDeletionAttempt requests deletion of a CC pair
func (c *Client) CreateDeletionAttempt(ctx context.Context, user *User, req *DeletionAttemptRequest) error {
	if err := c.do(ctx, user, http.MethodPost, "/manage/admin/deletion-attempt", req, nil); err != nil {
		return fmt.Errorf("failed to request deletion: %w", err)
	}

	tflog.Info(ctx, "Requested cc pair deletion", map[string]any{
		"connector_id":  req.ConnectorID,
		"credential_id": req.CredentialID,
	})
	return nil
}

// ListIndexingStatus lists the indexing status of every CC pair visible to the user
func (c *Client) ListIndexingStatus(ctx context.Context, user *User) ([]IndexingStatus, error) {
	var result []IndexingStatus
	if err := c.do(ctx, user, http.MethodGet, "/manage/admin/connector/indexing-status", nil, &result); err != nil {
		return nil, fmt.Errorf("failed to list indexing status: %w", err)
	}

	return result, nil
}

// GetLastPruned returns when the CC pair was last pruned, or nil if it never was.
// A body that is not a parseable timestamp string is treated as never pruned.
func (c *Client) GetLastPruned(ctx context.Context, user *User, id int) (*time.Time, error) {
	var raw json.RawMessage
	if err := c.do(ctx, user, http.MethodGet, fmt.Sprintf("/manage/admin/cc-pair/%d/last_pruned", id), nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to get last pruned time: %w", err)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return nil, nil
	}
	t, err := ParseTimestamp(s)
	if err != nil {
		tflog.Warn(ctx, "Ignoring unparseable last pruned time", map[string]any{"id": id, "value": s})
		return nil, nil
	}
	return &t, nil
}

// GetSyncTask returns the most recent sync task of a CC pair, or nil if none exists
func (c *Client) GetSyncTask(ctx context.Context, user *User, id int) (*TaskStatusResponse, error) {
	resp, err := c.doRequest(ctx, user, http.MethodGet, fmt.Sprintf("/manage/admin/cc-pair/%d/sync", id), nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, nil
	}

	var result *TaskStatusResponse
	if err := c.handleResponse(ctx, resp, &result); err != nil {
		return nil, fmt.Errorf("failed to get sync task: %w", err)
	}

	return result, nil
}
