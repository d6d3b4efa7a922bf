package resources

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/terraform-plugin-framework-validators/int64validator"
	"github.com/hashicorp/terraform-plugin-framework-validators/setvalidator"
	"github.com/hashicorp/terraform-plugin-framework-validators/stringvalidator"
	"github.com/hashicorp/terraform-plugin-framework/diag"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/booldefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/int64planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/planmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/setplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringdefault"
	"github.com/hashicorp/terraform-plugin-framework/resource/schema/stringplanmodifier"
	"github.com/hashicorp/terraform-plugin-framework/schema/validator"
	"github.com/hashicorp/terraform-plugin-framework/tfsdk"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

const ccPairNameSuffix = "-cc-pair"

// Ensure the implementation satisfies expected interfaces
var (
	_ resource.Resource                = &CCPairResource{}
	_ resource.ResourceWithConfigure   = &CCPairResource{}
	_ resource.ResourceWithImportState = &CCPairResource{}
)

// CCPairResource defines the resource implementation
type CCPairResource struct {
	manager *ccpair.Manager
}

// CCPairResourceModel describes the resource data model
type CCPairResourceModel struct {
	ID              types.Int64  `tfsdk:"id"`
	ConnectorID     types.Int64  `tfsdk:"connector_id"`
	CredentialID    types.Int64  `tfsdk:"credential_id"`
	Name            types.String `tfsdk:"name"`
	DisplayName     types.String `tfsdk:"display_name"`
	AccessType      types.String `tfsdk:"access_type"`
	Groups          types.Set    `tfsdk:"groups"`
	Status          types.String `tfsdk:"status"`
	WaitForIndexing types.Bool   `tfsdk:"wait_for_indexing"`
	Indexing        types.Object `tfsdk:"indexing"`
}

// NewCCPairResource creates a new resource
func NewCCPairResource() resource.Resource {
	return &CCPairResource{}
}

// Metadata returns the resource type name
func (r *CCPairResource) Metadata(ctx context.Context, req resource.MetadataRequest, resp *resource.MetadataResponse) {
	resp.TypeName = req.ProviderTypeName + "_cc_pair"
}

// Schema defines the resource schema
func (r *CCPairResource) Schema(ctx context.Context, req resource.SchemaRequest, resp *resource.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "Manages a connector-credential pair: one configured ingestion source on a Danswer server.",
		Attributes: map[string]schema.Attribute{
			"id": schema.Int64Attribute{
				Description: "Identifier of the CC pair.",
				Computed:    true,
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.UseStateForUnknown(),
				},
			},
			"connector_id": schema.Int64Attribute{
				Description: "ID of the connector to pair.",
				Required:    true,
				Validators: []validator.Int64{
					int64validator.AtLeast(0),
				},
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.RequiresReplace(),
				},
			},
			"credential_id": schema.Int64Attribute{
				Description: "ID of the credential to pair.",
				Required:    true,
				Validators: []validator.Int64{
					int64validator.AtLeast(0),
				},
				PlanModifiers: []planmodifier.Int64{
					int64planmodifier.RequiresReplace(),
				},
			},
			"name": schema.StringAttribute{
				Description: "Name prefix of the CC pair. The server-side name is this value with a \"-cc-pair\" suffix.",
				Required:    true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"display_name": schema.StringAttribute{
				Description: "Name of the CC pair as stored by the server.",
				Computed:    true,
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.UseStateForUnknown(),
				},
			},
			"access_type": schema.StringAttribute{
				Description: "Who can see documents from this source: public, private or sync.",
				Optional:    true,
				Computed:    true,
				Default:     stringdefault.StaticString(string(client.AccessTypePublic)),
				Validators: []validator.String{
					stringvalidator.OneOf(string(client.AccessTypePublic), string(client.AccessTypePrivate), string(client.AccessTypeSync)),
				},
				PlanModifiers: []planmodifier.String{
					stringplanmodifier.RequiresReplace(),
				},
			},
			"groups": schema.SetAttribute{
				Description: "IDs of the user groups given access.",
				ElementType: types.Int64Type,
				Optional:    true,
				Computed:    true,
				Validators: []validator.Set{
					setvalidator.ValueInt64sAre(int64validator.AtLeast(0)),
				},
				PlanModifiers: []planmodifier.Set{
					setplanmodifier.RequiresReplace(),
					setplanmodifier.UseStateForUnknown(),
				},
			},
			"status": schema.StringAttribute{
				Description: "Desired status: ACTIVE or PAUSED.",
				Optional:    true,
				Computed:    true,
				Default:     stringdefault.StaticString(string(client.CCPairStatusActive)),
				Validators: []validator.String{
					stringvalidator.OneOf(string(client.CCPairStatusActive), string(client.CCPairStatusPaused)),
				},
			},
			"wait_for_indexing": schema.BoolAttribute{
				Description: "Run indexing once on create and wait for it to succeed.",
				Optional:    true,
				Computed:    true,
				Default:     booldefault.StaticBool(false),
			},
			"indexing": schema.SingleNestedAttribute{
				Description: "Observed indexing state of the CC pair.",
				Computed:    true,
				Attributes: map[string]schema.Attribute{
					"status": schema.StringAttribute{
						Description: "Observed status: ACTIVE, PAUSED or DELETING.",
						Computed:    true,
					},
					"in_progress": schema.BoolAttribute{
						Description: "Whether an indexing run is underway.",
						Computed:    true,
					},
					"last_success": schema.StringAttribute{
						Description: "RFC 3339 timestamp of the last successful indexing run.",
						Computed:    true,
					},
				},
			},
		},
	}
}

// Configure adds the provider-configured manager to the resource
func (r *CCPairResource) Configure(ctx context.Context, req resource.ConfigureRequest, resp *resource.ConfigureResponse) {
	if req.ProviderData == nil {
		return
	}

	manager, ok := req.ProviderData.(*ccpair.Manager)
	if !ok {
		resp.Diagnostics.AddError(
			"Unexpected Resource Configure Type",
			fmt.Sprintf("Expected *ccpair.Manager, got: %T. Please report this issue to the provider developers.", req.ProviderData),
		)
		return
	}

	r.manager = manager
}

// Create creates a new CC pair, optionally waiting for its first indexing run
func (r *CCPairResource) Create(ctx context.Context, req resource.CreateRequest, resp *resource.CreateResponse) {
	var data CCPairResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	groups, diags := groupsFromModel(ctx, data.Groups)
	resp.Diagnostics.Append(diags...)
	if resp.Diagnostics.HasError() {
		return
	}

	handle, err := r.manager.Create(ctx, ccpair.CreateRequest{
		ConnectorID:  int(data.ConnectorID.ValueInt64()),
		CredentialID: int(data.CredentialID.ValueInt64()),
		Name:         data.Name.ValueString(),
		AccessType:   client.AccessType(data.AccessType.ValueString()),
		Groups:       groups,
	})
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Creating CC Pair",
			"Could not create cc pair: "+err.Error(),
		)
		return
	}

	// Saved before waiting so a failed wait still leaves the pair tracked
	resp.Diagnostics.Append(mapHandleToModel(ctx, handle, &data)...)
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	if data.WaitForIndexing.ValueBool() {
		after := time.Now()
		if err := r.manager.RunOnce(ctx, handle); err != nil {
			resp.Diagnostics.AddError("Error Triggering Indexing", "Could not trigger indexing run: "+err.Error())
			return
		}
		if err := r.manager.WaitForIndexing(ctx, handle, after); err != nil {
			resp.Diagnostics.AddError("Error Waiting For Indexing", err.Error())
			return
		}
	}

	if data.Status.ValueString() == string(client.CCPairStatusPaused) {
		if err := r.manager.Pause(ctx, handle); err != nil {
			resp.Diagnostics.AddError("Error Pausing CC Pair", "Could not pause cc pair: "+err.Error())
			return
		}
	}

	r.refresh(ctx, &data, &resp.State, &resp.Diagnostics)
	tflog.Info(ctx, "Created cc pair resource", map[string]any{"id": handle.ID})
}

// Read refreshes the Terraform state with the latest data from the API
func (r *CCPairResource) Read(ctx context.Context, req resource.ReadRequest, resp *resource.ReadResponse) {
	var data CCPairResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	id := int(data.ID.ValueInt64())
	snapshot, err := r.manager.Get(ctx, id)
	if err != nil {
		resp.Diagnostics.AddError(
			"Error Reading CC Pair",
			fmt.Sprintf("Could not read cc pair ID %d: %s", id, err),
		)
		return
	}
	if snapshot == nil {
		tflog.Warn(ctx, "CC pair not found, removing from state", map[string]any{"id": id})
		resp.State.RemoveResource(ctx)
		return
	}

	resp.Diagnostics.Append(mapSnapshotToModel(ctx, snapshot, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}
	resp.Diagnostics.Append(resp.State.Set(ctx, &data)...)
}

// Update changes the CC pair status (pause or resume)
func (r *CCPairResource) Update(ctx context.Context, req resource.UpdateRequest, resp *resource.UpdateResponse) {
	var plan CCPairResourceModel
	var state CCPairResourceModel

	resp.Diagnostics.Append(req.Plan.Get(ctx, &plan)...)
	resp.Diagnostics.Append(req.State.Get(ctx, &state)...)
	if resp.Diagnostics.HasError() {
		return
	}

	handle := handleFromModel(state)
	if !plan.Status.Equal(state.Status) {
		status, err := client.ParseCCPairStatus(plan.Status.ValueString())
		if err != nil {
			resp.Diagnostics.AddError("Invalid Status", err.Error())
			return
		}
		if err := r.manager.SetStatus(ctx, handle, status); err != nil {
			resp.Diagnostics.AddError(
				"Error Updating CC Pair",
				fmt.Sprintf("Could not update cc pair ID %d: %s", handle.ID, err),
			)
			return
		}
	}

	plan.ID = state.ID
	r.refresh(ctx, &plan, &resp.State, &resp.Diagnostics)
	tflog.Info(ctx, "Updated cc pair resource", map[string]any{"id": handle.ID})
}

// Delete requests deletion of the CC pair and waits until it is gone
func (r *CCPairResource) Delete(ctx context.Context, req resource.DeleteRequest, resp *resource.DeleteResponse) {
	var data CCPairResourceModel

	resp.Diagnostics.Append(req.State.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	handle := handleFromModel(data)
	if err := r.manager.Delete(ctx, handle); err != nil {
		if client.IsNotFoundError(err) {
			tflog.Warn(ctx, "CC pair already deleted", map[string]any{"id": handle.ID})
			return
		}
		resp.Diagnostics.AddError(
			"Error Deleting CC Pair",
			fmt.Sprintf("Could not delete cc pair ID %d: %s", handle.ID, err),
		)
		return
	}

	if err := r.manager.WaitForDeletion(ctx, &handle.ID); err != nil {
		resp.Diagnostics.AddError("Error Waiting For CC Pair Deletion", err.Error())
		return
	}

	tflog.Info(ctx, "Deleted cc pair", map[string]any{"id": handle.ID})
}

// ImportState imports an existing CC pair by its numeric ID
func (r *CCPairResource) ImportState(ctx context.Context, req resource.ImportStateRequest, resp *resource.ImportStateResponse) {
	id, err := strconv.ParseInt(req.ID, 10, 64)
	if err != nil {
		resp.Diagnostics.AddError(
			"Invalid Import ID",
			fmt.Sprintf("Expected a numeric cc pair ID, got: %s", req.ID),
		)
		return
	}

	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("id"), id)...)
	resp.Diagnostics.Append(resp.State.SetAttribute(ctx, path.Root("wait_for_indexing"), false)...)
}

// refresh reads the CC pair back after a change and stores it in state
func (r *CCPairResource) refresh(ctx context.Context, data *CCPairResourceModel, state *tfsdk.State, diags *diag.Diagnostics) {
	id := int(data.ID.ValueInt64())
	snapshot, err := r.manager.Get(ctx, id)
	if err != nil {
		diags.AddError("Error Reading CC Pair", fmt.Sprintf("Could not read cc pair ID %d: %s", id, err))
		return
	}
	if snapshot == nil {
		diags.AddError("Error Reading CC Pair", fmt.Sprintf("CC pair ID %d not found after change", id))
		return
	}

	diags.Append(mapSnapshotToModel(ctx, snapshot, data)...)
	if diags.HasError() {
		return
	}
	diags.Append(state.Set(ctx, data)...)
}

// mapSnapshotToModel maps an observed snapshot onto the Terraform resource model
func mapSnapshotToModel(ctx context.Context, s *ccpair.Snapshot, data *CCPairResourceModel) diag.Diagnostics {
	data.ID = types.Int64Value(int64(s.ID))
	data.ConnectorID = types.Int64Value(int64(s.ConnectorID))
	data.CredentialID = types.Int64Value(int64(s.CredentialID))
	data.DisplayName = types.StringValue(s.Name)
	data.AccessType = types.StringValue(string(s.AccessType))
	data.Status = types.StringValue(string(s.Status))

	// Keep the configured name prefix; derive it only on import
	if data.Name.IsNull() || data.Name.IsUnknown() || data.Name.ValueString() == "" {
		data.Name = types.StringValue(strings.TrimSuffix(s.Name, ccPairNameSuffix))
	}
	if data.WaitForIndexing.IsNull() || data.WaitForIndexing.IsUnknown() {
		data.WaitForIndexing = types.BoolValue(false)
	}

	groups := make([]int64, 0, len(s.Groups))
	for _, g := range s.Groups {
		groups = append(groups, int64(g))
	}
	set, diags := types.SetValueFrom(ctx, types.Int64Type, groups)
	data.Groups = set

	lastSuccess := ""
	if s.LastSuccess != nil {
		lastSuccess = s.LastSuccess.UTC().Format(time.RFC3339)
	}
	indexing, d := types.ObjectValueFrom(ctx, indexingStatusAttrTypes, IndexingStatus{
		Status:      string(s.Status),
		InProgress:  s.InProgress,
		LastSuccess: lastSuccess,
	})
	diags.Append(d...)
	data.Indexing = indexing
	return diags
}

// mapHandleToModel fills the computed fields known right after creation.
// Indexing stays null until the pair is read back.
func mapHandleToModel(ctx context.Context, h ccpair.Handle, data *CCPairResourceModel) diag.Diagnostics {
	data.ID = types.Int64Value(int64(h.ID))
	data.DisplayName = types.StringValue(h.Name)
	data.AccessType = types.StringValue(string(h.AccessType))
	data.Indexing = types.ObjectNull(indexingStatusAttrTypes)

	groups := make([]int64, len(h.Groups))
	for i, g := range h.Groups {
		groups[i] = int64(g)
	}
	groupsValue, diags := types.SetValueFrom(ctx, types.Int64Type, groups)
	data.Groups = groupsValue
	return diags
}

func groupsFromModel(ctx context.Context, set types.Set) ([]int, diag.Diagnostics) {
	if set.IsNull() || set.IsUnknown() {
		return []int{}, nil
	}
	var raw []int64
	diags := set.ElementsAs(ctx, &raw, false)
	groups := make([]int, 0, len(raw))
	for _, g := range raw {
		groups = append(groups, int(g))
	}
	return groups, diags
}

func handleFromModel(data CCPairResourceModel) ccpair.Handle {
	return ccpair.Handle{
		ID:           int(data.ID.ValueInt64()),
		Name:         data.DisplayName.ValueString(),
		ConnectorID:  int(data.ConnectorID.ValueInt64()),
		CredentialID: int(data.CredentialID.ValueInt64()),
		AccessType:   client.AccessType(data.AccessType.ValueString()),
	}
}
