package ccpair

import (
	"fmt"
	"sort"
)

// MismatchError reports that observed CC pair state differs from what was expected.
type MismatchError struct {
	ID int
	// Field is empty when the mismatch is about presence rather than a field value.
	Field    string
	Expected any
	Observed any
	Reason   string
}

func (e *MismatchError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cc pair %d %s", e.ID, e.Reason)
	}
	return fmt.Sprintf("cc pair %d %s mismatch: expected %v, observed %v", e.ID, e.Field, e.Expected, e.Observed)
}

// Verify checks expected against the observed snapshots.
//
// With expectDeleted, any snapshot carrying expected.ID is a mismatch. Otherwise
// such a snapshot must exist and agree on name, connector, credential, access
// type and group membership. Groups are compared as sets.
func Verify(expected Handle, observed []Snapshot, expectDeleted bool) error {
	found, ok := findSnapshot(observed, expected.ID)

	if expectDeleted {
		if ok {
			return &MismatchError{ID: expected.ID, Reason: "found but should be deleted"}
		}
		return nil
	}
	if !ok {
		return &MismatchError{ID: expected.ID, Reason: "not found"}
	}

	switch {
	case found.Name != expected.Name:
		return fieldMismatch(expected.ID, "name", expected.Name, found.Name)
	case found.ConnectorID != expected.ConnectorID:
		return fieldMismatch(expected.ID, "connector_id", expected.ConnectorID, found.ConnectorID)
	case found.CredentialID != expected.CredentialID:
		return fieldMismatch(expected.ID, "credential_id", expected.CredentialID, found.CredentialID)
	case found.AccessType != expected.AccessType:
		return fieldMismatch(expected.ID, "access_type", expected.AccessType, found.AccessType)
	case !sameGroups(expected.Groups, found.Groups):
		return fieldMismatch(expected.ID, "groups", groupSet(expected.Groups), groupSet(found.Groups))
	}
	return nil
}

func fieldMismatch(id int, field string, expected, observed any) error {
	return &MismatchError{ID: id, Field: field, Expected: expected, Observed: observed}
}

func sameGroups(a, b []int) bool {
	sa, sb := groupSet(a), groupSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

// groupSet returns the distinct ids in ascending order.
func groupSet(groups []int) []int {
	out := make([]int, 0, len(groups))
	seen := make(map[int]struct{}, len(groups))
	for _, g := range groups {
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}
