// Package ccpair drives the lifecycle of connector-credential pairs on a
// Danswer API server and waits for the server's background work on them to
// finish.
//
// Mutations are single requests and are never retried. Waits poll fresh
// snapshots through poll.Until and reject any completion time at or before the
// caller's "after" time, since that belongs to an earlier operation.
package ccpair

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
	"github.com/clintdigital/terraform-provider-danswer/internal/poll"
)

// Manager composes the API client, the poller and the verifier into named
// lifecycle operations.
type Manager struct {
	api              API
	fetcher          *Fetcher
	clock            poll.Clock
	defaultUser      *client.User
	interval         time.Duration
	deletionInterval time.Duration
	timeout          time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets the clock used by waits.
func WithClock(c poll.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithDefaultUser sets the user requests are performed as when a call does not name one.
func WithDefaultUser(u *client.User) Option {
	return func(m *Manager) { m.defaultUser = u }
}

// WithTimeout sets the default wait timeout.
func WithTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

// WithIntervals sets the polling cadence of indexing/prune/sync waits and of deletion waits.
func WithIntervals(interval, deletion time.Duration) Option {
	return func(m *Manager) {
		m.interval = interval
		m.deletionInterval = deletion
	}
}

// NewManager creates a Manager over api.
func NewManager(api API, opts ...Option) *Manager {
	m := &Manager{
		api:              api,
		fetcher:          NewFetcher(api),
		clock:            poll.RealClock(),
		interval:         poll.DefaultInterval,
		deletionInterval: poll.DefaultDeletionInterval,
		timeout:          poll.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CallOption adjusts a single Manager call.
type CallOption func(*callOptions)

type callOptions struct {
	user    *client.User
	timeout time.Duration
}

// As performs the call as user instead of the default user.
func As(user *client.User) CallOption {
	return func(o *callOptions) { o.user = user }
}

// Timeout overrides the wait timeout of a single wait.
func Timeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

func (m *Manager) resolve(opts []CallOption) callOptions {
	o := callOptions{user: m.defaultUser, timeout: m.timeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.user == nil {
		o.user = m.defaultUser
	}
	return o
}

// CreateRequest describes a CC pair over an existing connector and credential.
type CreateRequest struct {
	ConnectorID  int
	CredentialID int
	// Name is suffixed with "-cc-pair"; when empty a unique test name is generated.
	Name       string
	AccessType client.AccessType
	Groups     []int
}

// FromScratchRequest describes a CC pair whose connector and credential are created first.
type FromScratchRequest struct {
	Name            string
	AccessType      client.AccessType
	Groups          []int
	Source          string
	InputType       string
	ConnectorConfig map[string]any
	CredentialJSON  map[string]any
}

// Create associates an existing connector and credential and returns the new handle.
func (m *Manager) Create(ctx context.Context, req CreateRequest, opts ...CallOption) (Handle, error) {
	o := m.resolve(opts)

	accessType := req.AccessType
	if accessType == "" {
		accessType = client.AccessTypePublic
	}
	groups := req.Groups
	if groups == nil {
		groups = []int{}
	}
	name := uniqueName(req.Name, "cc-pair")

	id, err := m.api.CreateCCPair(ctx, o.user, req.ConnectorID, req.CredentialID, &client.CCPairRequest{
		Name:       name,
		AccessType: accessType,
		Groups:     groups,
	})
	if err != nil {
		return Handle{}, err
	}

	return Handle{
		ID:           id,
		Name:         name,
		ConnectorID:  req.ConnectorID,
		CredentialID: req.CredentialID,
		AccessType:   accessType,
		Groups:       append([]int(nil), groups...),
	}, nil
}

// CreateFromScratch creates a connector, a credential and the CC pair joining them.
func (m *Manager) CreateFromScratch(ctx context.Context, req FromScratchRequest, opts ...CallOption) (Handle, error) {
	o := m.resolve(opts)

	accessType := req.AccessType
	if accessType == "" {
		accessType = client.AccessTypePublic
	}
	public := accessType == client.AccessTypePublic
	source := req.Source
	if source == "" {
		source = "file"
	}
	inputType := req.InputType
	if inputType == "" {
		inputType = "load_state"
	}
	groups := req.Groups
	if groups == nil {
		groups = []int{}
	}
	connectorConfig := req.ConnectorConfig
	if connectorConfig == nil {
		connectorConfig = map[string]any{}
	}
	credentialJSON := req.CredentialJSON
	if credentialJSON == nil {
		credentialJSON = map[string]any{}
	}

	connector, err := m.api.CreateConnector(ctx, o.user, &client.ConnectorRequest{
		Name:                    uniqueName(req.Name, "connector"),
		Source:                  source,
		InputType:               inputType,
		ConnectorSpecificConfig: connectorConfig,
		IsPublic:                public,
		Groups:                  groups,
	})
	if err != nil {
		return Handle{}, err
	}

	credential, err := m.api.CreateCredential(ctx, o.user, &client.CredentialRequest{
		Name:           uniqueName(req.Name, "credential"),
		Source:         source,
		CredentialJSON: credentialJSON,
		CuratorPublic:  public,
		Groups:         groups,
	})
	if err != nil {
		return Handle{}, err
	}

	return m.Create(ctx, CreateRequest{
		ConnectorID:  connector.ID,
		CredentialID: credential.ID,
		Name:         req.Name,
		AccessType:   accessType,
		Groups:       groups,
	}, opts...)
}

func uniqueName(name, kind string) string {
	if name != "" {
		return fmt.Sprintf("%s-%s", name, kind)
	}
	return fmt.Sprintf("test-%s-%s", kind, uuid.NewString())
}

// Pause stops scheduled indexing of the CC pair.
func (m *Manager) Pause(ctx context.Context, h Handle, opts ...CallOption) error {
	return m.SetStatus(ctx, h, client.CCPairStatusPaused, opts...)
}

// Resume re-enables scheduled indexing of the CC pair.
func (m *Manager) Resume(ctx context.Context, h Handle, opts ...CallOption) error {
	return m.SetStatus(ctx, h, client.CCPairStatusActive, opts...)
}

// SetStatus changes the status of the CC pair.
func (m *Manager) SetStatus(ctx context.Context, h Handle, status client.CCPairStatus, opts ...CallOption) error {
	o := m.resolve(opts)
	return m.api.UpdateCCPairStatus(withPair(ctx, h.ID), o.user, h.ID, status)
}

// RunOnce triggers a full indexing run of the CC pair.
func (m *Manager) RunOnce(ctx context.Context, h Handle, opts ...CallOption) error {
	o := m.resolve(opts)
	return m.api.RunOnce(withPair(ctx, h.ID), o.user, &client.RunOnceRequest{
		ConnectorID:   h.ConnectorID,
		CredentialIDs: []int{h.CredentialID},
		FromBeginning: true,
	})
}

// Prune triggers pruning of the CC pair.
func (m *Manager) Prune(ctx context.Context, h Handle, opts ...CallOption) error {
	o := m.resolve(opts)
	return m.api.Prune(withPair(ctx, h.ID), o.user, h.ID)
}

// Sync triggers a permission sync of the CC pair.
func (m *Manager) Sync(ctx context.Context, h Handle, opts ...CallOption) error {
	o := m.resolve(opts)
	return m.api.Sync(withPair(ctx, h.ID), o.user, h.ID)
}

// Delete requests deletion of the CC pair. Use WaitForDeletion to wait for it.
func (m *Manager) Delete(ctx context.Context, h Handle, opts ...CallOption) error {
	o := m.resolve(opts)
	return m.api.CreateDeletionAttempt(withPair(ctx, h.ID), o.user, &client.DeletionAttemptRequest{
		ConnectorID:  h.ConnectorID,
		CredentialID: h.CredentialID,
	})
}

// List returns a snapshot of every visible CC pair.
func (m *Manager) List(ctx context.Context, opts ...CallOption) ([]Snapshot, error) {
	o := m.resolve(opts)
	return m.fetcher.List(ctx, o.user)
}

// Get returns the snapshot of CC pair id, or nil if it is not visible.
func (m *Manager) Get(ctx context.Context, id int, opts ...CallOption) (*Snapshot, error) {
	o := m.resolve(opts)
	return m.fetcher.Get(withPair(ctx, id), o.user, id)
}

// LastPruned returns when the CC pair was last pruned, or nil.
func (m *Manager) LastPruned(ctx context.Context, h Handle, opts ...CallOption) (*time.Time, error) {
	o := m.resolve(opts)
	return m.fetcher.LastPruned(withPair(ctx, h.ID), o.user, h.ID)
}

// SyncTask returns the latest sync task of the CC pair, or nil.
func (m *Manager) SyncTask(ctx context.Context, h Handle, opts ...CallOption) (*Task, error) {
	o := m.resolve(opts)
	return m.fetcher.SyncTask(withPair(ctx, h.ID), o.user, h.ID)
}

// Verify fetches every CC pair and checks h against them. See Verify.
func (m *Manager) Verify(ctx context.Context, h Handle, expectDeleted bool, opts ...CallOption) error {
	snapshots, err := m.List(withPair(ctx, h.ID), opts...)
	if err != nil {
		return err
	}
	if err := Verify(h, snapshots, expectDeleted); err != nil {
		return err
	}

	tflog.Debug(ctx, "Verified cc pair", map[string]any{"cc_pair_id": h.ID, "expect_deleted": expectDeleted})
	return nil
}

func withPair(ctx context.Context, id int) context.Context {
	return tflog.SetField(ctx, "cc_pair_id", id)
}
