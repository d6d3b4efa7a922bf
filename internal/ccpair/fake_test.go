package ccpair

import (
	"context"
	"time"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// fakeAPI replays scripted responses. Each list of responses repeats its last
// element once exhausted.
type fakeAPI struct {
	lists      [][]client.IndexingStatus
	listErr    error
	listCalls  int
	pruned     []*time.Time
	pruneCalls int
	tasks      []*client.TaskStatusResponse
	taskCalls  int

	nextID      int
	createErr   error
	connectors  []client.ConnectorRequest
	credentials []client.CredentialRequest
	pairs       []client.CCPairRequest
	statuses    []client.CCPairStatus
	runOnce     []client.RunOnceRequest
	deletions   []client.DeletionAttemptRequest
	prunes      []int
	syncs       []int
	users       []*client.User
}

func pick[T any](items []T, calls *int) T {
	i := *calls
	*calls++
	if len(items) == 0 {
		var zero T
		return zero
	}
	if i >= len(items) {
		i = len(items) - 1
	}
	return items[i]
}

func (f *fakeAPI) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeAPI) CreateConnector(_ context.Context, user *client.User, req *client.ConnectorRequest) (*client.ObjectCreatedResponse, error) {
	f.users = append(f.users, user)
	f.connectors = append(f.connectors, *req)
	return &client.ObjectCreatedResponse{ID: f.id()}, nil
}

func (f *fakeAPI) CreateCredential(_ context.Context, user *client.User, req *client.CredentialRequest) (*client.ObjectCreatedResponse, error) {
	f.users = append(f.users, user)
	f.credentials = append(f.credentials, *req)
	return &client.ObjectCreatedResponse{ID: f.id()}, nil
}

func (f *fakeAPI) CreateCCPair(_ context.Context, user *client.User, _, _ int, req *client.CCPairRequest) (int, error) {
	f.users = append(f.users, user)
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.pairs = append(f.pairs, *req)
	return f.id(), nil
}

func (f *fakeAPI) UpdateCCPairStatus(_ context.Context, user *client.User, _ int, status client.CCPairStatus) error {
	f.users = append(f.users, user)
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeAPI) RunOnce(_ context.Context, user *client.User, req *client.RunOnceRequest) error {
	f.users = append(f.users, user)
	f.runOnce = append(f.runOnce, *req)
	return nil
}

func (f *fakeAPI) Prune(_ context.Context, user *client.User, id int) error {
	f.users = append(f.users, user)
	f.prunes = append(f.prunes, id)
	return nil
}

func (f *fakeAPI) Sync(_ context.Context, user *client.User, id int) error {
	f.users = append(f.users, user)
	f.syncs = append(f.syncs, id)
	return nil
}

func (f *fakeAPI) CreateDeletionAttempt(_ context.Context, user *client.User, req *client.DeletionAttemptRequest) error {
	f.users = append(f.users, user)
	f.deletions = append(f.deletions, *req)
	return nil
}

func (f *fakeAPI) ListIndexingStatus(_ context.Context, user *client.User) ([]client.IndexingStatus, error) {
	f.users = append(f.users, user)
	if f.listErr != nil {
		f.listCalls++
		return nil, f.listErr
	}
	return pick(f.lists, &f.listCalls), nil
}

func (f *fakeAPI) GetLastPruned(_ context.Context, user *client.User, _ int) (*time.Time, error) {
	f.users = append(f.users, user)
	return pick(f.pruned, &f.pruneCalls), nil
}

func (f *fakeAPI) GetSyncTask(_ context.Context, user *client.User, _ int) (*client.TaskStatusResponse, error) {
	f.users = append(f.users, user)
	return pick(f.tasks, &f.taskCalls), nil
}

func ts(t time.Time) *client.Timestamp {
	return &client.Timestamp{Time: t}
}

func tp(t time.Time) *time.Time {
	return &t
}
