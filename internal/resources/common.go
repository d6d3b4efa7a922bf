package resources

import (
	"github.com/hashicorp/terraform-plugin-framework/attr"
	"github.com/hashicorp/terraform-plugin-framework/types"
)

// IndexingStatus represents computed indexing attributes of a CC pair.
// These fields are read-only and populated by the API.
type IndexingStatus struct {
	Status      string `tfsdk:"status"`       // Observed status: ACTIVE, PAUSED, DELETING
	InProgress  bool   `tfsdk:"in_progress"`  // Whether an indexing run is underway
	LastSuccess string `tfsdk:"last_success"` // RFC 3339 timestamp of the last successful run
}

// indexingStatusAttrTypes must match the tfsdk tags of IndexingStatus.
var indexingStatusAttrTypes = map[string]attr.Type{
	"status":       types.StringType,
	"in_progress":  types.BoolType,
	"last_success": types.StringType,
}
