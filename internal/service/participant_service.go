package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// ParticipantService coordinates event registrations.
type ParticipantService struct {
	participants repository.ParticipantRepository
	events       *EventService
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ParticipantDependencies bundles collaborators for the participant service.
type ParticipantDependencies struct {
	ParticipantRepo repository.ParticipantRepository
	EventService    *EventService
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewParticipantService constructs the service.
func NewParticipantService(deps ParticipantDependencies) *ParticipantService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipantService{
		participants: deps.ParticipantRepo,
		events:       deps.EventService,
		dispatcher:   deps.Dispatcher,
		logger:       logger,
	}
}

// Register signs userID up for eventID.
func (s *ParticipantService) Register(ctx context.Context, eventID, userID int64) (*domain.Participant, error) {
	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	existing, err := s.participants.GetRegistration(ctx, eventID, userID)
	switch {
	case err == nil:
		return nil, registrationExistsError(existing.Status)
	case !errors.Is(err, pgx.ErrNoRows):
		return nil, err
	}

	participant, err := s.participants.Register(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, registrationExistsError(domain.ParticipantStatusRegistered)
		}
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventParticipantRegistered, eventID, userID,
		events.ParticipantRegisteredPayload{ParticipantID: participant.ID, UserID: userID}))
	return participant, nil
}

// Cancel cancels participantID's registration. Only the event owner may cancel.
func (s *ParticipantService) Cancel(ctx context.Context, callerID, eventID, participantID int64, reason string) (*domain.Participant, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.NewValidationError("cancellation reason is required", nil)
	}
	if err := s.requireOwner(ctx, callerID, eventID, "only event owner can cancel registrations"); err != nil {
		return nil, err
	}

	registration, err := s.participants.GetRegistration(ctx, eventID, participantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("registration", nil)
		}
		return nil, err
	}
	if registration.Status == domain.ParticipantStatusCancelled {
		return nil, apperrors.NewBadRequest("registration is already cancelled")
	}

	cancelled, err := s.participants.Cancel(ctx, eventID, participantID, reason)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventRegistrationCancelled, eventID, callerID,
		events.RegistrationCancelledPayload{UserID: participantID, Reason: reason}))
	return cancelled, nil
}

// ListParticipants returns the registrations of eventID to its owner.
func (s *ParticipantService) ListParticipants(ctx context.Context, callerID, eventID int64) ([]domain.Participant, error) {
	if err := s.requireOwner(ctx, callerID, eventID, "only event owner can view participants"); err != nil {
		return nil, err
	}
	return s.participants.ListByEvent(ctx, eventID)
}

// ListParticipating returns the events userID registered for.
func (s *ParticipantService) ListParticipating(ctx context.Context, userID int64) ([]domain.ParticipatingEvent, error) {
	return s.participants.ListParticipatingEvents(ctx, userID)
}

func (s *ParticipantService) requireOwner(ctx context.Context, callerID, eventID int64, forbidden string) error {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if !event.OwnedBy(callerID) {
		return apperrors.NewForbidden(forbidden)
	}
	return nil
}

func registrationExistsError(status domain.ParticipantStatus) error {
	if status == domain.ParticipantStatusCancelled {
		return apperrors.NewBadRequest("your registration was previously cancelled")
	}
	return apperrors.NewBadRequest("you are already registered for this event")
}
