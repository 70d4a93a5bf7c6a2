package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status is the mutable lifecycle field of a Record. Any non-empty string is accepted;
// the constants below are the values the dashboard knows how to render.
type Status string

const (
	StatusUpcoming  Status = "upcoming"
	StatusOngoing   Status = "ongoing"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
)

// Reserved JSON keys. They are owned by the typed Record fields and never
// stored inside Fields.
const (
	FieldID          = "id"
	FieldDateCreated = "dateCreated"
	FieldStatus      = "status"
)

// Payload is an arbitrary set of caller-supplied fields.
type Payload map[string]any

// ErrInvalidStatus is returned when a payload carries a "status" that is not
// a non-empty string.
var ErrInvalidStatus = errors.New(`"status" must be a non-empty string`)

// CheckStatus validates the "status" key of p, if present.
func CheckStatus(p Payload) error {
	v, ok := p[FieldStatus]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case string:
		if s != "" {
			return nil
		}
	case Status:
		if s != "" {
			return nil
		}
	}
	return fmt.Errorf("%w, got %#v", ErrInvalidStatus, v)
}

// Record is one persisted entity (exam, webinar, schedule entry, user).
type Record struct {
	ID          string
	DateCreated time.Time
	Status      Status
	Fields      Payload
}

// IsReservedField reports whether key is one of id, dateCreated or status.
func IsReservedField(key string) bool {
	return key == FieldID || key == FieldDateCreated || key == FieldStatus
}

// Get returns a payload field.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// String returns a payload field as a string, or "" if absent or not a string.
func (r Record) String(key string) string {
	s, _ := r.Fields[key].(string)
	return s
}

// MarshalJSON flattens the record into one object: payload fields plus the
// reserved keys.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		if IsReservedField(k) {
			continue
		}
		out[k] = v
	}
	out[FieldID] = r.ID
	out[FieldDateCreated] = r.DateCreated.UTC().Format(time.RFC3339Nano)
	out[FieldStatus] = r.Status
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("record: expected object, got null")
	}

	id, _ := raw[FieldID].(string)
	status, _ := raw[FieldStatus].(string)

	var created time.Time
	if s, ok := raw[FieldDateCreated].(string); ok && s != "" {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("record %q: parse dateCreated: %w", id, err)
		}
		created = t.UTC()
	}

	fields := make(Payload, len(raw))
	for k, v := range raw {
		if IsReservedField(k) {
			continue
		}
		fields[k] = v
	}

	*r = Record{
		ID:          id,
		DateCreated: created,
		Status:      Status(status),
		Fields:      fields,
	}
	return nil
}
