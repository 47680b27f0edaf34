package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "QUERY_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Workflow lifecycle event codes.
const (
	TypeQueryCompleted = "QUERY_COMPLETED"
	TypeQueryFailed    = "QUERY_FAILED"
)

// NewQueryCompleted marks a query workflow reaching a successful terminal state.
func NewQueryCompleted(sessionID, queryID, queryClass string) Event {
	return BaseEvent{
		Type: TypeQueryCompleted,
		Data: map[string]interface{}{
			"session_id":  sessionID,
			"query_id":    queryID,
			"query_class": queryClass,
		},
		OccurredAt: time.Now(),
	}
}

// NewQueryFailed marks a query workflow reaching a failure terminal state.
func NewQueryFailed(sessionID, queryID, terminalState string) Event {
	return BaseEvent{
		Type: TypeQueryFailed,
		Data: map[string]interface{}{
			"session_id":     sessionID,
			"query_id":       queryID,
			"terminal_state": terminalState,
		},
		OccurredAt: time.Now(),
	}
}
