package events

import "time"

// Event defines the contract for all events published on the bus.
type Event interface {
	// EventType returns the subject suffix, e.g. "analytics.chat_message_sent".
	EventType() string

	Payload() map[string]interface{}

	Timestamp() time.Time
}

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

const AnalyticsPrefix = "analytics."

// NewAnalyticsEvent builds the bus form of a product analytics event.
func NewAnalyticsEvent(name, distinctID, sessionID string, at time.Time) BaseEvent {
	data := map[string]interface{}{
		"event":       name,
		"distinct_id": distinctID,
		"occurred_at": at.UTC().Format(time.RFC3339Nano),
	}
	if sessionID != "" {
		data["session_id"] = sessionID
	}
	return BaseEvent{Type: AnalyticsPrefix + name, Data: data, OccurredAt: at}
}
