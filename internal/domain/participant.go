package domain

import "time"

// ParticipantStatus enumerates registration states.
type ParticipantStatus string

const (
	ParticipantStatusRegistered ParticipantStatus = "registered"
	ParticipantStatusCancelled  ParticipantStatus = "cancelled"
)

// Participant is a user's registration for an event.
type Participant struct {
	ID                 int64
	EventID            int64
	UserID             int64
	Status             ParticipantStatus
	RegisteredAt       time.Time
	CancelledAt        *time.Time
	CancellationReason *string

	// Populated when listing participants of an event.
	Name  string
	Email string
}

// ParticipatingEvent is an event seen from one participant's registration.
type ParticipatingEvent struct {
	Event
	Status       ParticipantStatus
	RegisteredAt time.Time
	CancelledAt  *time.Time
}
