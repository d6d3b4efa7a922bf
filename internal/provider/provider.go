package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/clintdigital/terraform-provider-danswer/internal/ccpair"
	"github.com/clintdigital/terraform-provider-danswer/internal/config"
	"github.com/clintdigital/terraform-provider-danswer/internal/resources"
	"github.com/hashicorp/terraform-plugin-framework/datasource"
	"github.com/hashicorp/terraform-plugin-framework/path"
	"github.com/hashicorp/terraform-plugin-framework/provider"
	"github.com/hashicorp/terraform-plugin-framework/provider/schema"
	"github.com/hashicorp/terraform-plugin-framework/resource"
	"github.com/hashicorp/terraform-plugin-framework/types"
	"github.com/hashicorp/terraform-plugin-log/tflog"
)

// Ensure the implementation satisfies the provider.Provider interface
var _ provider.Provider = &DanswerProvider{}

// DanswerProvider defines the provider implementation.
type DanswerProvider struct {
	version string
}

// DanswerProviderModel describes the provider data model.
type DanswerProviderModel struct {
	Endpoint    types.String `tfsdk:"endpoint"`
	APIKey      types.String `tfsdk:"api_key"`
	WaitTimeout types.String `tfsdk:"wait_timeout"`
}

// New creates a new provider instance
func New(version string) func() provider.Provider {
	return func() provider.Provider {
		return &DanswerProvider{
			version: version,
		}
	}
}

// Metadata returns the provider type name.
func (p *DanswerProvider) Metadata(ctx context.Context, req provider.MetadataRequest, resp *provider.MetadataResponse) {
	resp.TypeName = "danswer"
	resp.Version = p.version
}

// Schema defines the provider-level schema for configuration data.
func (p *DanswerProvider) Schema(ctx context.Context, req provider.SchemaRequest, resp *provider.SchemaResponse) {
	resp.Schema = schema.Schema{
		Description: "Terraform provider for managing connector-credential pairs on a Danswer API server.",
		Attributes: map[string]schema.Attribute{
			"endpoint": schema.StringAttribute{
				Description: "Danswer API server URL. Can also be set via DANSWER_API_SERVER_URL environment variable.",
				Optional:    true,
			},
			"api_key": schema.StringAttribute{
				Description: "Danswer API key. Can also be set via DANSWER_API_KEY environment variable.",
				Optional:    true,
				Sensitive:   true,
			},
			"wait_timeout": schema.StringAttribute{
				Description: "How long to wait for indexing and deletion to finish, as a Go duration (default: 30s).",
				Optional:    true,
			},
		},
	}
}

// Configure prepares the CC pair manager for data sources and resources.
func (p *DanswerProvider) Configure(ctx context.Context, req provider.ConfigureRequest, resp *provider.ConfigureResponse) {
	tflog.Info(ctx, "Configuring Danswer provider")

	var data DanswerProviderModel
	resp.Diagnostics.Append(req.Config.Get(ctx, &data)...)
	if resp.Diagnostics.HasError() {
		return
	}

	// Configuration values win over environment variables
	cfg := config.FromEnv()
	if !data.Endpoint.IsNull() {
		cfg.APIServerURL = data.Endpoint.ValueString()
	}
	if !data.APIKey.IsNull() {
		cfg.APIKey = data.APIKey.ValueString()
	}
	if !data.WaitTimeout.IsNull() {
		timeout, err := time.ParseDuration(data.WaitTimeout.ValueString())
		if err != nil {
			resp.Diagnostics.AddAttributeError(
				path.Root("wait_timeout"),
				"Invalid Wait Timeout",
				fmt.Sprintf("Could not parse wait_timeout %q: %s", data.WaitTimeout.ValueString(), err),
			)
			return
		}
		cfg.Wait.Timeout = config.Duration(timeout)
	}

	if cfg.APIServerURL == "" {
		resp.Diagnostics.AddAttributeError(
			path.Root("endpoint"),
			"Missing Danswer API Endpoint",
			"The provider cannot create the Danswer API client as there is a missing or empty value for the endpoint. "+
				"Set the endpoint value in the configuration or use the DANSWER_API_SERVER_URL environment variable. "+
				"If either is already set, ensure the value is not empty.",
		)
		return
	}
	if err := cfg.Validate(); err != nil {
		resp.Diagnostics.AddError("Invalid Danswer Provider Configuration", err.Error())
		return
	}
	if cfg.APIKey == "" {
		tflog.Warn(ctx, "No Danswer API key configured, requests will be unauthenticated")
	}

	manager := ccpair.FromConfig(cfg, p.version)

	// Make the manager available to resources and data sources
	resp.DataSourceData = manager
	resp.ResourceData = manager

	tflog.Info(ctx, "Configured Danswer provider", map[string]any{"endpoint": cfg.APIServerURL})
}

// Resources defines the resources implemented in the provider.
func (p *DanswerProvider) Resources(ctx context.Context) []func() resource.Resource {
	return []func() resource.Resource{
		resources.NewCCPairResource,
	}
}

// DataSources defines the data sources implemented in the provider.
func (p *DanswerProvider) DataSources(ctx context.Context) []func() datasource.DataSource {
	return []func() datasource.DataSource{
		// Data sources can be added here if needed
	}
}
