package ccpair

import (
	"context"
	"time"

	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// API is the subset of the Danswer API used to drive CC pairs.
// *client.Client satisfies it.
type API interface {
	CreateConnector(ctx context.Context, user *client.User, req *client.ConnectorRequest) (*client.ObjectCreatedResponse, error)
	CreateCredential(ctx context.Context, user *client.User, req *client.CredentialRequest) (*client.ObjectCreatedResponse, error)
	CreateCCPair(ctx context.Context, user *client.User, connectorID, credentialID int, req *client.CCPairRequest) (int, error)
	UpdateCCPairStatus(ctx context.Context, user *client.User, id int, status client.CCPairStatus) error
	RunOnce(ctx context.Context, user *client.User, req *client.RunOnceRequest) error
	Prune(ctx context.Context, user *client.User, id int) error
	Sync(ctx context.Context, user *client.User, id int) error
	CreateDeletionAttempt(ctx context.Context, user *client.User, req *client.DeletionAttemptRequest) error
	ListIndexingStatus(ctx context.Context, user *client.User) ([]client.IndexingStatus, error)
	GetLastPruned(ctx context.Context, user *client.User, id int) (*time.Time, error)
	GetSyncTask(ctx context.Context, user *client.User, id int) (*client.TaskStatusResponse, error)
}

var _ API = (*client.Client)(nil)

// Fetcher reads typed snapshots of CC pair state.
type Fetcher struct {
	api API
}

// NewFetcher creates a Fetcher over api.
func NewFetcher(api API) *Fetcher {
	return &Fetcher{api: api}
}

// List returns a snapshot of every CC pair visible to user.
func (f *Fetcher) List(ctx context.Context, user *client.User) ([]Snapshot, error) {
	statuses, err := f.api.ListIndexingStatus(ctx, user)
	if err != nil {
		return nil, err
	}

	snapshots := make([]Snapshot, 0, len(statuses))
	for _, st := range statuses {
		if st.CCPairStatus == client.CCPairStatusUnknown {
			tflog.Warn(ctx, "CC pair has an unrecognized status", map[string]any{"cc_pair_id": st.CCPairID})
		}
		snapshots = append(snapshots, snapshotFromStatus(st))
	}
	return snapshots, nil
}

// Get returns the snapshot of CC pair id, or nil if it is not visible.
func (f *Fetcher) Get(ctx context.Context, user *client.User, id int) (*Snapshot, error) {
	snapshots, err := f.List(ctx, user)
	if err != nil {
		return nil, err
	}
	if s, ok := findSnapshot(snapshots, id); ok {
		return &s, nil
	}
	return nil, nil
}

// LastPruned returns when CC pair id was last pruned, or nil.
func (f *Fetcher) LastPruned(ctx context.Context, user *client.User, id int) (*time.Time, error) {
	return f.api.GetLastPruned(ctx, user, id)
}

// SyncTask returns the latest sync task of CC pair id, or nil if none exists.
func (f *Fetcher) SyncTask(ctx context.Context, user *client.User, id int) (*Task, error) {
	resp, err := f.api.GetSyncTask(ctx, user, id)
	if err != nil || resp == nil {
		return nil, err
	}
	return &Task{
		ID:           resp.ID,
		Status:       resp.Status,
		RegisterTime: resp.RegisterTime.TimePtr(),
	}, nil
}
