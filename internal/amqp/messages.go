package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event kinds carried on the activity exchange.
const (
	EventActivityCreated  = "activity.created"
	EventActivityUpdated  = "activity.updated"
	EventActivityDeleted  = "activity.deleted"
	EventRolloverComplete = "rollover.complete"
)

// ActivityEvent is a lightweight change notification. Consumers fetch the
// full record from the repository when they need it.
type ActivityEvent struct {
	Kind       string    `json:"kind"`
	ActivityID uuid.UUID `json:"activity_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`

	// Rollover aggregate counts, set only for EventRolloverComplete.
	Reset  int `json:"reset,omitempty"`
	Failed int `json:"failed,omitempty"`
}

// NewActivityEvent creates a change event for a single activity.
func NewActivityEvent(kind string, id uuid.UUID) *ActivityEvent {
	return &ActivityEvent{
		Kind:       kind,
		ActivityID: id,
		Timestamp:  time.Now(),
	}
}

// NewRolloverEvent creates the aggregate event published after a rollover
// pass ("N reset, M failed" instead of one event per record).
func NewRolloverEvent(reset, failed int) *ActivityEvent {
	return &ActivityEvent{
		Kind:      EventRolloverComplete,
		Timestamp: time.Now(),
		Reset:     reset,
		Failed:    failed,
	}
}

// ToJSON converts the event to JSON bytes.
func (e *ActivityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ActivityEventFromJSON parses an event from JSON bytes.
func ActivityEventFromJSON(data []byte) (*ActivityEvent, error) {
	var ev ActivityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
