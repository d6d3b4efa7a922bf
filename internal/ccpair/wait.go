package ccpair

import (
	"context"
	"fmt"
	"time"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
	"github.com/clintdigital/terraform-provider-danswer/internal/poll"
)

func (m *Manager) pollConfig(resource string, interval time.Duration, o callOptions) poll.Config {
	return poll.Config{
		Resource: resource,
		Interval: interval,
		Timeout:  o.timeout,
		Clock:    m.clock,
	}
}

// WaitForIndexing waits until the CC pair has finished an indexing run that
// succeeded strictly after after.
func (m *Manager) WaitForIndexing(ctx context.Context, h Handle, after time.Time, opts ...CallOption) error {
	o := m.resolve(opts)
	ctx = withPair(ctx, h.ID)
	cfg := m.pollConfig(fmt.Sprintf("cc pair %d indexing", h.ID), m.interval, o)

	return poll.Until(ctx, cfg, func(ctx context.Context) ([]Snapshot, error) {
		return m.fetcher.List(ctx, o.user)
	}, func(snapshots []Snapshot) poll.Result {
		return indexingComplete(snapshots, h.ID, after)
	})
}

func indexingComplete(snapshots []Snapshot, id int, after time.Time) poll.Result {
	s, ok := findSnapshot(snapshots, id)
	switch {
	case !ok:
		return poll.Pending("not listed yet")
	case s.InProgress:
		return poll.Pending("in progress")
	case s.LastSuccess == nil:
		return poll.Pending("never succeeded")
	case !s.LastSuccess.After(after):
		return poll.Pending(fmt.Sprintf("last success %s is stale", s.LastSuccess.Format(time.RFC3339)))
	}
	return poll.Finished()
}

// WaitForPrune waits until the CC pair reports a prune strictly after after.
func (m *Manager) WaitForPrune(ctx context.Context, h Handle, after time.Time, opts ...CallOption) error {
	o := m.resolve(opts)
	ctx = withPair(ctx, h.ID)
	cfg := m.pollConfig(fmt.Sprintf("cc pair %d pruning", h.ID), m.interval, o)

	return poll.Until(ctx, cfg, func(ctx context.Context) (*time.Time, error) {
		return m.fetcher.LastPruned(ctx, o.user, h.ID)
	}, func(lastPruned *time.Time) poll.Result {
		return pruneComplete(lastPruned, after)
	})
}

func pruneComplete(lastPruned *time.Time, after time.Time) poll.Result {
	if lastPruned == nil {
		return poll.Pending("never pruned")
	}
	if !lastPruned.After(after) {
		return poll.Pending(fmt.Sprintf("last pruned %s is stale", lastPruned.Format(time.RFC3339)))
	}
	return poll.Finished()
}

// WaitForSync waits until the sync task registered strictly after after has
// succeeded. It fails without waiting further when no such task is registered.
func (m *Manager) WaitForSync(ctx context.Context, h Handle, after time.Time, opts ...CallOption) error {
	o := m.resolve(opts)
	ctx = withPair(ctx, h.ID)
	cfg := m.pollConfig(fmt.Sprintf("cc pair %d syncing", h.ID), m.interval, o)

	return poll.Until(ctx, cfg, func(ctx context.Context) (*Task, error) {
		return m.fetcher.SyncTask(ctx, o.user, h.ID)
	}, func(task *Task) poll.Result {
		return syncComplete(task, after)
	})
}

func syncComplete(task *Task, after time.Time) poll.Result {
	switch {
	case task == nil:
		return poll.Failed("sync task not found")
	case task.RegisterTime == nil:
		return poll.Failed("sync task has no register time")
	case !task.RegisterTime.After(after):
		return poll.Failed("sync task register time %s is too early", task.RegisterTime.Format(time.RFC3339Nano))
	case task.Status == client.TaskStatusSuccess:
		return poll.Finished()
	}
	return poll.Pending(fmt.Sprintf("task status %s", task.Status))
}

// WaitForDeletion waits for deletion to finish. With an id it waits until that
// CC pair is no longer listed. Without one it waits until no listed CC pair is
// DELETING; that mode can miss a pair paused mid-delete, so prefer passing the id.
func (m *Manager) WaitForDeletion(ctx context.Context, id *int, opts ...CallOption) error {
	o := m.resolve(opts)
	resource := "cc pair deletion"
	if id != nil {
		ctx = withPair(ctx, *id)
		resource = fmt.Sprintf("cc pair %d deletion", *id)
	}
	cfg := m.pollConfig(resource, m.deletionInterval, o)

	return poll.Until(ctx, cfg, func(ctx context.Context) ([]Snapshot, error) {
		return m.fetcher.List(ctx, o.user)
	}, func(snapshots []Snapshot) poll.Result {
		return deletionComplete(snapshots, id)
	})
}

func deletionComplete(snapshots []Snapshot, id *int) poll.Result {
	if id != nil {
		if _, ok := findSnapshot(snapshots, *id); ok {
			return poll.Pending("still listed")
		}
		return poll.Finished()
	}

	for _, s := range snapshots {
		if s.Status == client.CCPairStatusDeleting {
			return poll.Pending(fmt.Sprintf("cc pair %d still deleting", s.ID))
		}
	}
	return poll.Finished()
}
