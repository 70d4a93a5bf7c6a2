package websocket

import "github.com/stemsi/lms-admin-mock/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing      Action = "ping"
	ActionSubscribe Action = "subscribe"
)

// Request is any client message. Collections is read for subscribe only;
// an empty list means every collection.
type Request struct {
	Action      Action   `json:"action"`
	Collections []string `json:"collections,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventHello      Event = "hello"
	EventChange     Event = "change"
	EventSubscribed Event = "subscribed"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// HelloResponse is sent once after the upgrade.
type HelloResponse struct {
	Event      Event        `json:"event"`
	Role       model.Role   `json:"role"`
	Manageable []model.Role `json:"manageable"`
}

// ChangeResponse carries one collection change.
type ChangeResponse struct {
	Event  Event             `json:"event"`
	Change model.ChangeEvent `json:"change"`
}

type SubscribedResponse struct {
	Event       Event    `json:"event"`
	Collections []string `json:"collections"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
