package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every CC pair with its indexing state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail("list failed", err)
			}

			snapshots, err := m.List(cmd.Context())
			if err != nil {
				return f.Fail("list failed", err)
			}
			return f.Success(snapshots, formatSnapshots(snapshots))
		},
	}
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one CC pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return f.Fail("get failed", err)
			}
			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail("get failed", err)
			}

			s, err := lookup(cmd.Context(), m, id)
			if err != nil {
				return f.Fail("get failed", err)
			}
			return f.Success(s, formatSnapshots([]ccpair.Snapshot{*s}))
		},
	}
}

type createOptions struct {
	connectorID  int
	credentialID int
	name         string
	accessType   string
	groups       []int
	fromScratch  bool
	source       string
	inputType    string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a CC pair",
		Long: `Create a CC pair over an existing connector and credential, or with
--from-scratch create the connector and credential first.

The server-side name is --name with a "-cc-pair" suffix. Without --name a
unique test name is generated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.connectorID, "connector-id", 0, "ID of an existing connector")
	cmd.Flags().IntVar(&opts.credentialID, "credential-id", 0, "ID of an existing credential")
	cmd.Flags().StringVar(&opts.name, "name", "", "name prefix")
	cmd.Flags().StringVar(&opts.accessType, "access-type", string(client.AccessTypePublic), "public, private or sync")
	cmd.Flags().IntSliceVar(&opts.groups, "groups", nil, "user group IDs given access")
	cmd.Flags().BoolVar(&opts.fromScratch, "from-scratch", false, "create the connector and credential too")
	cmd.Flags().StringVar(&opts.source, "source", "", "connector source for --from-scratch (default file)")
	cmd.Flags().StringVar(&opts.inputType, "input-type", "", "connector input type for --from-scratch (default load_state)")
	cmd.MarkFlagsMutuallyExclusive("from-scratch", "connector-id")
	cmd.MarkFlagsMutuallyExclusive("from-scratch", "credential-id")

	return cmd
}

func runCreate(rootOpts *RootOptions, opts *createOptions, cmd *cobra.Command) error {
	f := rootOpts.formatter(cmd)

	accessType, err := client.ParseAccessType(opts.accessType)
	if err != nil {
		return f.Fail("create failed", WrapExitError(ExitCommandError, "invalid --access-type", err))
	}
	if !opts.fromScratch && (!cmd.Flags().Changed("connector-id") || !cmd.Flags().Changed("credential-id")) {
		return f.Fail("create failed", NewExitError(ExitCommandError, "--connector-id and --credential-id are required without --from-scratch"))
	}

	m, err := rootOpts.manager(cmd)
	if err != nil {
		return f.Fail("create failed", err)
	}

	var h ccpair.Handle
	if opts.fromScratch {
		h, err = m.CreateFromScratch(cmd.Context(), ccpair.FromScratchRequest{
			Name:       opts.name,
			AccessType: accessType,
			Groups:     opts.groups,
			Source:     opts.source,
			InputType:  opts.inputType,
		})
	} else {
		h, err = m.Create(cmd.Context(), ccpair.CreateRequest{
			ConnectorID:  opts.connectorID,
			CredentialID: opts.credentialID,
			Name:         opts.name,
			AccessType:   accessType,
			Groups:       opts.groups,
		})
	}
	if err != nil {
		return f.Fail("create failed", err)
	}

	f.VerboseLog("connector %d, credential %d", h.ConnectorID, h.CredentialID)
	return f.Success(h, fmt.Sprintf("Created cc pair %d (%s)", h.ID, h.Name))
}

// NewStatusCommand creates a command that sets the CC pair status, used for
// pause and resume.
func NewStatusCommand(rootOpts *RootOptions, use string, status client.CCPairStatus) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: fmt.Sprintf("Set a CC pair's status to %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return f.Fail(use+" failed", err)
			}
			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail(use+" failed", err)
			}

			if err := m.SetStatus(cmd.Context(), ccpair.Handle{ID: id}, status); err != nil {
				return f.Fail(use+" failed", err)
			}
			return f.Success(map[string]any{"id": id, "status": status}, fmt.Sprintf("CC pair %d is %s", id, status))
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Request deletion of a CC pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			id, err := parseID(args[0])
			if err != nil {
				return f.Fail("delete failed", err)
			}
			m, err := rootOpts.manager(cmd)
			if err != nil {
				return f.Fail("delete failed", err)
			}

			h, err := lookupHandle(cmd.Context(), m, id)
			if err != nil {
				return f.Fail("delete failed", err)
			}
			if err := m.Delete(cmd.Context(), h); err != nil {
				return f.Fail("delete failed", err)
			}
			if wait {
				f.VerboseLog("waiting for cc pair %d to disappear", id)
				if err := m.WaitForDeletion(cmd.Context(), &id); err != nil {
					return f.Fail("delete failed", err)
				}
				return f.Success(map[string]any{"id": id, "deleted": true}, fmt.Sprintf("Deleted cc pair %d", id))
			}
			return f.Success(map[string]any{"id": id, "deleted": false}, fmt.Sprintf("Requested deletion of cc pair %d", id))
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "wait until the CC pair is gone")
	return cmd
}

// lookup fetches a snapshot, treating an absent CC pair as a command error.
func lookup(ctx context.Context, m *ccpair.Manager, id int) (*ccpair.Snapshot, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("cc pair %d not found", id))
	}
	return s, nil
}

func lookupHandle(ctx context.Context, m *ccpair.Manager, id int) (ccpair.Handle, error) {
	s, err := lookup(ctx, m, id)
	if err != nil {
		return ccpair.Handle{}, err
	}
	return ccpair.HandleFromSnapshot(*s), nil
}

func formatSnapshots(snapshots []ccpair.Snapshot) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTATUS\tIN PROGRESS\tLAST SUCCESS\tCONNECTOR\tCREDENTIAL\tACCESS\tGROUPS")
	for _, s := range snapshots {
		lastSuccess := "-"
		if s.LastSuccess != nil {
			lastSuccess = s.LastSuccess.UTC().Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%s\t%d\t%d\t%s\t%v\n",
			s.ID, s.Name, s.Status, s.InProgress, lastSuccess, s.ConnectorID, s.CredentialID, s.AccessType, s.Groups)
	}
	w.Flush()
	return strings.TrimRight(b.String(), "\n")
}
