package ccpair

import (
	"time"

	"github.com/clintdigital/terraform-provider-danswer/internal/client"
)

// Handle identifies a CC pair created by the caller. It is never mutated
// after creation.
type Handle struct {
	ID           int               `json:"id"`
	Name         string            `json:"name"`
	ConnectorID  int               `json:"connector_id"`
	CredentialID int               `json:"credential_id"`
	AccessType   client.AccessType `json:"access_type"`
	Groups       []int             `json:"groups"`
}

// Snapshot is the observed state of a CC pair at one point in time. The
// last pruned time is not part of it; it is read with Fetcher.LastPruned.
type Snapshot struct {
	ID           int                 `json:"id"`
	Name         string              `json:"name"`
	Status       client.CCPairStatus `json:"status"`
	InProgress   bool                `json:"in_progress"`
	LastSuccess  *time.Time          `json:"last_success,omitempty"`
	ConnectorID  int                 `json:"connector_id"`
	CredentialID int                 `json:"credential_id"`
	AccessType   client.AccessType   `json:"access_type"`
	Groups       []int               `json:"groups"`
}

// Task describes the most recent background task of a CC pair.
type Task struct {
	ID           string            `json:"id"`
	Status       client.TaskStatus `json:"status"`
	RegisterTime *time.Time        `json:"register_time,omitempty"`
}

// HandleFromSnapshot builds a Handle for a CC pair the caller did not create.
func HandleFromSnapshot(s Snapshot) Handle {
	return Handle{
		ID:           s.ID,
		Name:         s.Name,
		ConnectorID:  s.ConnectorID,
		CredentialID: s.CredentialID,
		AccessType:   s.AccessType,
		Groups:       append([]int(nil), s.Groups...),
	}
}

func snapshotFromStatus(st client.IndexingStatus) Snapshot {
	return Snapshot{
		ID:           st.CCPairID,
		Name:         st.Name,
		Status:       st.CCPairStatus,
		InProgress:   st.InProgress,
		LastSuccess:  st.LastSuccess.TimePtr(),
		ConnectorID:  st.Connector.ID,
		CredentialID: st.Credential.ID,
		AccessType:   st.AccessType,
		Groups:       st.Groups,
	}
}

func findSnapshot(snapshots []Snapshot, id int) (Snapshot, bool) {
	for _, s := range snapshots {
		if s.ID == id {
			return s, true
		}
	}
	return Snapshot{}, false
}
