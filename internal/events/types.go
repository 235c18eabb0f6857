package events

import "time"

// EventType indicates what kind of change occurred
type EventType string

const (
	EventRowsChanged EventType = "rows_changed"
	EventPing        EventType = "ping"
	EventPong        EventType = "pong"
)

// DefaultTable names the row collection every process currently shares
const DefaultTable = "activities"

// Event represents a row collection change notification
type Event struct {
	Type       EventType `json:"type"`
	Table      string    `json:"table,omitempty"`  // For filtering: which collection changed ("" = all)
	RowID      string    `json:"row_id,omitempty"` // Row that changed, "" when several did
	Source     string    `json:"source,omitempty"` // Id of the client that published the event
	Timestamp  time.Time `json:"timestamp"`
	SequenceID int64     `json:"sequence_id"` // Monotonically increasing, assigned by the daemon
}

// SubscribeMessage is sent by clients to subscribe to one collection's updates
type SubscribeMessage struct {
	Table string `json:"table"` // "" = all collections
}

// Message types on the wire
const (
	MessageEvent     = "event"
	MessageSubscribe = "subscribe"
	MessagePing      = "ping"
	MessagePong      = "pong"
)

// Message wraps events and control messages for wire protocol
type Message struct {
	Type      string            `json:"type"`
	Event     *Event            `json:"event,omitempty"`
	Subscribe *SubscribeMessage `json:"subscribe,omitempty"`
}
