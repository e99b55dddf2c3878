package dto

import (
	"time"

	"github.com/spec-kit/event-service/internal/domain"
)

// CancelRequest payload for cancelling a registration.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ParticipantResponse describes one registration.
type ParticipantResponse struct {
	ID                 int64                    `json:"id"`
	EventID            int64                    `json:"event_id"`
	UserID             int64                    `json:"user_id"`
	Status             domain.ParticipantStatus `json:"status"`
	RegisteredAt       time.Time                `json:"registered_at"`
	CancelledAt        *time.Time               `json:"cancelled_at"`
	CancellationReason *string                  `json:"cancellation_reason"`
	Name               string                   `json:"name,omitempty"`
	Email              string                   `json:"email,omitempty"`
}

// NewParticipantResponse maps a registration.
func NewParticipantResponse(p *domain.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:                 p.ID,
		EventID:            p.EventID,
		UserID:             p.UserID,
		Status:             p.Status,
		RegisteredAt:       p.RegisteredAt,
		CancelledAt:        p.CancelledAt,
		CancellationReason: p.CancellationReason,
		Name:               p.Name,
		Email:              p.Email,
	}
}

// NewParticipantList maps registrations.
func NewParticipantList(participants []domain.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, NewParticipantResponse(&participants[i]))
	}
	return out
}

// ParticipatingEventResponse is an event seen from one of its participants.
type ParticipatingEventResponse struct {
	EventResponse
	Status       domain.ParticipantStatus `json:"status"`
	RegisteredAt time.Time                `json:"registered_at"`
	CancelledAt  *time.Time               `json:"cancelled_at"`
}

// NewParticipatingList maps participating events.
func NewParticipatingList(items []domain.ParticipatingEvent) []ParticipatingEventResponse {
	out := make([]ParticipatingEventResponse, 0, len(items))
	for i := range items {
		out = append(out, ParticipatingEventResponse{
			EventResponse: NewEventResponse(&items[i].Event),
			Status:        items[i].Status,
			RegisteredAt:  items[i].RegisteredAt,
			CancelledAt:   items[i].CancelledAt,
		})
	}
	return out
}
