package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// AccessType controls who can see documents indexed through a CC pair.
type AccessType string

const (
	AccessTypePublic  AccessType = "public"
	AccessTypePrivate AccessType = "private"
	AccessTypeSync    AccessType = "sync"
	// AccessTypeUnknown is decoded for values this client does not recognise.
	AccessTypeUnknown AccessType = "unknown"
)

// ParseAccessType converts an API value into an AccessType.
func ParseAccessType(s string) (AccessType, error) {
	switch v := AccessType(strings.ToLower(s)); v {
	case AccessTypePublic, AccessTypePrivate, AccessTypeSync:
		return v, nil
	}
	return AccessTypeUnknown, fmt.Errorf("unrecognized access type %q", s)
}

// UnmarshalJSON decodes unrecognised values to AccessTypeUnknown.
func (a *AccessType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a, _ = ParseAccessType(s)
	return nil
}

// CCPairStatus is the lifecycle status of a connector-credential pair.
type CCPairStatus string

const (
	CCPairStatusActive   CCPairStatus = "ACTIVE"
	CCPairStatusPaused   CCPairStatus = "PAUSED"
	CCPairStatusDeleting CCPairStatus = "DELETING"
	CCPairStatusUnknown  CCPairStatus = "UNKNOWN"
)

// ParseCCPairStatus converts an API value into a CCPairStatus.
func ParseCCPairStatus(s string) (CCPairStatus, error) {
	switch v := CCPairStatus(strings.ToUpper(s)); v {
	case CCPairStatusActive, CCPairStatusPaused, CCPairStatusDeleting:
		return v, nil
	}
	return CCPairStatusUnknown, fmt.Errorf("unrecognized cc pair status %q", s)
}

// UnmarshalJSON decodes unrecognised values to CCPairStatusUnknown.
func (s *CCPairStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s, _ = ParseCCPairStatus(raw)
	return nil
}

// TaskStatus is the state of a background task on the API server.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusStarted TaskStatus = "STARTED"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailure TaskStatus = "FAILURE"
	TaskStatusUnknown TaskStatus = "UNKNOWN"
)

// ParseTaskStatus converts an API value into a TaskStatus.
func ParseTaskStatus(s string) (TaskStatus, error) {
	switch v := TaskStatus(strings.ToUpper(s)); v {
	case TaskStatusPending, TaskStatusStarted, TaskStatusSuccess, TaskStatusFailure:
		return v, nil
	}
	return TaskStatusUnknown, fmt.Errorf("unrecognized task status %q", s)
}

// UnmarshalJSON decodes unrecognised values to TaskStatusUnknown.
func (s *TaskStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s, _ = ParseTaskStatus(raw)
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the ISO 8601 timestamps emitted by the API server.
// Timestamps without a zone are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

// Timestamp is a time.Time that decodes from the API server's timestamp format.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for Timestamp
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// TimePtr returns nil for a nil Timestamp, otherwise a pointer to its time.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}
