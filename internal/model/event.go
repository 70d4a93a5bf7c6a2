package model

import "time"

// ChangeAction names the mutation behind a ChangeEvent.
type ChangeAction string

const (
	ChangeCreated   ChangeAction = "created"
	ChangeUpdated   ChangeAction = "updated"
	ChangeDeleted   ChangeAction = "deleted"
	ChangeScheduled ChangeAction = "scheduled"
)

// ChangeEvent tells other clients that a collection was rewritten.
type ChangeEvent struct {
	Collection string       `json:"collection"`
	Action     ChangeAction `json:"action"`
	RecordID   string       `json:"record_id"`
	At         time.Time    `json:"at"`
}
