package events

import "time"

// ProtocolVersion is bumped whenever the wire format changes
const ProtocolVersion = 1

// EventType indicates what kind of change occurred
type EventType string

const (
	// EventTasksChanged means one or more task records were written or deleted
	EventTasksChanged EventType = "tasks_changed"
	// EventSchemaChanged means the database file was migrated to a new
	// version and open handles must be discarded
	EventSchemaChanged EventType = "schema_changed"
	EventPing          EventType = "ping"
	EventPong          EventType = "pong"
)

// Event represents a store change notification
type Event struct {
	Type       EventType
	TaskID     string    // For filtering - which task was modified, "" for many
	Timestamp  time.Time // When the event occurred
	SequenceID int64     // Monotonically increasing sequence number for ordering
}

// SubscribeMessage is sent by clients to subscribe to specific task updates
type SubscribeMessage struct {
	TaskID string // "" = all tasks
}

// Matches reports whether an event should be delivered to this subscription.
// Schema changes always match.
func (s SubscribeMessage) Matches(e Event) bool {
	return e.Type == EventSchemaChanged || e.TaskID == "" || s.TaskID == "" || s.TaskID == e.TaskID
}

// Message wraps events and control messages for wire protocol
type Message struct {
	Version   int               `json:",omitempty"`
	Type      string            // "event", "subscribe", "ping", "pong"
	Event     *Event            `json:",omitempty"`
	Subscribe *SubscribeMessage `json:",omitempty"`
}
