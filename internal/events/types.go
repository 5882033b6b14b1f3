package events

import "time"

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeFile is emitted once per processed document.
	EventTypeFile EventType = "file"
	// EventTypeSystem carries watcher/server lifecycle messages.
	EventTypeSystem EventType = "system"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// FileEvent describes the outcome of one document. Only the base name is
// published; full paths and matched text stay out of the event stream.
type FileEvent struct {
	Path    string `json:"path"`
	Status  string `json:"status"`
	Matches int    `json:"matches"`
	Reason  string `json:"reason,omitempty"`
}

// SystemEvent carries a free-form status message.
type SystemEvent struct {
	Message string `json:"message"`
}
