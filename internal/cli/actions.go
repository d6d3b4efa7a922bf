package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// action is a background operation that can be triggered and then waited on.
type action struct {
	use     string
	short   string
	trigger func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle) error
	wait    func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle, after time.Time) error
}

var (
	runOnceAction = action{
		use:   "run-once",
		short: "Trigger an indexing run from the beginning",
		trigger: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle) error {
			return m.RunOnce(ctx, h)
		},
		wait: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle, after time.Time) error {
			return m.WaitForIndexing(ctx, h, after)
		},
	}
	pruneAction = action{
		use:   "prune",
		short: "Trigger a prune",
		trigger: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle) error {
			return m.Prune(ctx, h)
		},
		wait: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle, after time.Time) error {
			return m.WaitForPrune(ctx, h, after)
		},
	}
	syncAction = action{
		use:   "sync",
		short: "Trigger a permission sync",
		trigger: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle) error {
			return m.Sync(ctx, h)
		},
		wait: func(ctx context.Context, m *ccpair.Manager, h ccpair.Handle, after time.Time) error {
			return m.WaitForSync(ctx, h, after)
		},
	}
)

// NewRunOnceCommand creates the run-once command.
func NewRunOnceCommand(rootOpts *RootOptions) *cobra.Command {
	return newActionCommand(rootOpts, runOnceAction)
}

// NewPruneCommand creates the prune command.
func NewPruneCommand(rootOpts *RootOptions) *cobra.Command {
	return newActionCommand(rootOpts, pruneAction)
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	return newActionCommand(rootOpts, syncAction)
}

func newActionCommand(rootOpts *RootOptions, a action) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   a.use + " <id>",
		Short: a.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			failed := a.use + " failed"
			id, err := parseID(args[0])
			if err != nil {
				return f.Fail(failed, err)
			}
			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail(failed, err)
			}

			h, err := lookupHandle(cmd.Context(), m, id)
			if err != nil {
				return f.Fail(failed, err)
			}

			// Completions at or before this instant belong to earlier runs
			after := time.Now().UTC()
			if err := a.trigger(cmd.Context(), m, h); err != nil {
				return f.Fail(failed, err)
			}
			if !wait {
				return f.Success(map[string]any{"id": id, "operation": a.use, "complete": false},
					fmt.Sprintf("Triggered %s for cc pair %d", a.use, id))
			}

			f.VerboseLog("waiting for %s of cc pair %d after %s", a.use, id, after.Format(time.RFC3339Nano))
			if err := a.wait(cmd.Context(), m, h, after); err != nil {
				return f.Fail(failed, err)
			}
			return f.Success(map[string]any{"id": id, "operation": a.use, "complete": true},
				fmt.Sprintf("Completed %s for cc pair %d", a.use, id))
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait for the triggered work to finish")
	return cmd
}

type verifyOptions struct {
	name          string
	connectorID   int
	credentialID  int
	accessType    string
	groups        []int
	expectDeleted bool
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a CC pair against its expected attributes",
		Long: `Fetch the CC pair list and check that the CC pair is present with the
expected name, connector, credential, access type and groups. With
--expect-deleted, check that it is absent instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "expected server-side name")
	cmd.Flags().IntVar(&opts.connectorID, "connector-id", 0, "expected connector ID")
	cmd.Flags().IntVar(&opts.credentialID, "credential-id", 0, "expected credential ID")
	cmd.Flags().StringVar(&opts.accessType, "access-type", string(client.AccessTypePublic), "expected access type")
	cmd.Flags().IntSliceVar(&opts.groups, "groups", nil, "expected user group IDs")
	cmd.Flags().BoolVar(&opts.expectDeleted, "expect-deleted", false, "expect the CC pair to be gone")

	return cmd
}

func runVerify(rootOpts *RootOptions, opts *verifyOptions, cmd *cobra.Command, arg string) error {
	f := rootOpts.formatter(cmd)

	id, err := parseID(arg)
	if err != nil {
		return f.Fail("verify failed", err)
	}
	accessType, err := client.ParseAccessType(opts.accessType)
	if err != nil {
		return f.Fail("verify failed", WrapExitError(ExitCommandError, "invalid --access-type", err))
	}
	m, err := rootOpts.manager(cmd)
	if err != nil {
		return f.Fail("verify failed", err)
	}

	expected := ccpair.Handle{
		ID:           id,
		Name:         opts.name,
		ConnectorID:  opts.connectorID,
		CredentialID: opts.credentialID,
		AccessType:   accessType,
		Groups:       opts.groups,
	}
	if err := m.Verify(cmd.Context(), expected, opts.expectDeleted); err != nil {
		return f.Fail("verify failed", err)
	}

	text := fmt.Sprintf("CC pair %d matches", id)
	if opts.expectDeleted {
		text = fmt.Sprintf("CC pair %d is deleted", id)
	}
	return f.Success(map[string]any{"id": id, "verified": true}, text)
}

// NewWaitCommand creates the wait command and its per-operation subcommands.
func NewWaitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wait",
		Short: "Wait for background work on a CC pair to finish",
	}

	cmd.AddCommand(newWaitForCommand(rootOpts, "indexing", runOnceAction))
	cmd.AddCommand(newWaitForCommand(rootOpts, "prune", pruneAction))
	cmd.AddCommand(newWaitForCommand(rootOpts, "sync", syncAction))
	cmd.AddCommand(newWaitDeletionCommand(rootOpts))

	return cmd
}

func newWaitForCommand(rootOpts *RootOptions, use string, a action) *cobra.Command {
	var after string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Wait for %s to complete", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			failed := "wait " + use + " failed"
			id, err := parseID(args[0])
			if err != nil {
				return f.Fail(failed, err)
			}

			// Without --after any completion counts
			var since time.Time
			if after != "" {
				since, err = client.ParseTimestamp(after)
				if err != nil {
					return f.Fail(failed, WrapExitError(ExitCommandError, "invalid --after", err))
				}
			}

			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail(failed, err)
			}
			if err := a.wait(cmd.Context(), m, ccpair.Handle{ID: id}, since); err != nil {
				return f.Fail(failed, err)
			}
			return f.Success(map[string]any{"id": id, "operation": use, "complete": true},
				fmt.Sprintf("CC pair %d %s complete", id, use))
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "only accept completions strictly after this RFC 3339 time")
	return cmd
}

func newWaitDeletionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "deletion [id]",
		Short: "Wait for a CC pair, or every deleting CC pair, to be gone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			var id *int
			if len(args) == 1 {
				parsed, err := parseID(args[0])
				if err != nil {
					return f.Fail("wait deletion failed", err)
				}
				id = &parsed
			}

			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail("wait deletion failed", err)
			}
			if err := m.WaitForDeletion(cmd.Context(), id); err != nil {
				return f.Fail("wait deletion failed", err)
			}

			if id == nil {
				return f.Success(map[string]any{"operation": "deletion", "complete": true}, "No cc pair is deleting")
			}
			return f.Success(map[string]any{"id": *id, "operation": "deletion", "complete": true},
				fmt.Sprintf("CC pair %d deleted", *id))
		},
	}
}
