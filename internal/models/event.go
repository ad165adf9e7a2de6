package models

// Event is the notification payload sent by the monitoring platform.
// The string fields are pointers so that an absent key can be told apart
// from an empty value: absent or null is rejected, "" is accepted.
// Timestamp is kept verbatim; it is never parsed.
type Event struct {
	EventID    *string        `json:"eventId" binding:"required"`
	TargetName *string        `json:"targetName" binding:"required"`
	EventType  *string        `json:"eventType" binding:"required"`
	Timestamp  *string        `json:"timestamp" binding:"required"`
	Data       map[string]any `json:"data" binding:"required"`
}

// IngestRequest is the POST /dtconn payload.
type IngestRequest struct {
	Event  *Event            `json:"event" binding:"required"`
	Labels map[string]string `json:"labels" binding:"required"`
}

// NewEvent builds an Event from plain values.
func NewEvent(eventID, targetName, eventType, timestamp string, data map[string]any) *Event {
	return &Event{
		EventID:    &eventID,
		TargetName: &targetName,
		EventType:  &eventType,
		Timestamp:  &timestamp,
		Data:       data,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
