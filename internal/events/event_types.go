package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported notification identifiers.
type EventType string

const (
	EventCreated               EventType = "event_created"
	EventUpdated               EventType = "event_updated"
	EventDeleted               EventType = "event_deleted"
	EventParticipantRegistered EventType = "participant_registered"
	EventRegistrationCancelled EventType = "registration_cancelled"
)

// Event represents a domain notification emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EventID   int64       `json:"event_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps a notification with an id and the current time.
func New(eventType EventType, eventID, actorID int64, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		EventID:   eventID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// EventChangedPayload payload for created/updated/deleted notifications.
type EventChangedPayload struct {
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// ParticipantRegisteredPayload payload.
type ParticipantRegisteredPayload struct {
	ParticipantID int64 `json:"participant_id"`
	UserID        int64 `json:"user_id"`
}

// RegistrationCancelledPayload payload.
type RegistrationCancelledPayload struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
}
