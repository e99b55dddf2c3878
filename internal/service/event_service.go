package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/event-service/internal/domain"
	"github.com/spec-kit/event-service/internal/events"
	"github.com/spec-kit/event-service/internal/repository"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// EventInput describes event creation payload.
type EventInput struct {
	Name        string
	Description string
	Date        time.Time
	Location    string
}

// EventFilter selects events for listing. The first non-empty criterion wins:
// Search, then Location, then the StartDate/EndDate range.
type EventFilter struct {
	Search    string
	Location  string
	StartDate *time.Time
	EndDate   *time.Time
}

// EventService coordinates event workflows.
type EventService struct {
	events     repository.EventRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo  repository.EventRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies) *EventService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{events: deps.EventRepo, dispatcher: deps.Dispatcher, logger: logger}
}

// Create stores a new event owned by ownerID.
func (s *EventService) Create(ctx context.Context, ownerID int64, input EventInput) (*domain.Event, error) {
	if strings.TrimSpace(input.Name) == "" || input.Date.IsZero() {
		return nil, apperrors.NewValidationError("name and date are required", nil)
	}
	event := &domain.Event{
		Name:        input.Name,
		Description: input.Description,
		Date:        input.Date,
		Location:    input.Location,
		OwnerID:     ownerID,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventCreated, event.ID, ownerID, changedPayload(event)))
	return event, nil
}

// List returns events matching filter.
func (s *EventService) List(ctx context.Context, filter EventFilter) ([]domain.Event, error) {
	switch {
	case filter.Search != "":
		return s.events.SearchByName(ctx, filter.Search)
	case filter.Location != "":
		return s.events.FilterByLocation(ctx, filter.Location)
	case filter.StartDate != nil && filter.EndDate != nil:
		return s.events.FilterByDateRange(ctx, *filter.StartDate, *filter.EndDate)
	default:
		return s.events.List(ctx)
	}
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id int64) (*domain.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("event", nil)
		}
		return nil, err
	}
	return event, nil
}

// ListByOwner returns the events created by ownerID.
func (s *EventService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Event, error) {
	return s.events.ListByOwner(ctx, ownerID)
}

// Update applies patch when callerID owns the event.
func (s *EventService) Update(ctx context.Context, callerID, id int64, patch repository.EventPatch) (*domain.Event, error) {
	if _, err := s.owned(ctx, callerID, id, "not authorized to update this event"); err != nil {
		return nil, err
	}
	updated, err := s.events.Update(ctx, id, patch)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventUpdated, id, callerID, changedPayload(updated)))
	return updated, nil
}

// Delete removes the event when callerID owns it and returns the removed row.
func (s *EventService) Delete(ctx context.Context, callerID, id int64) (*domain.Event, error) {
	if _, err := s.owned(ctx, callerID, id, "not authorized to delete this event"); err != nil {
		return nil, err
	}
	deleted, err := s.events.Delete(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventDeleted, id, callerID, changedPayload(deleted)))
	return deleted, nil
}

// owned loads the event, reporting a missing event before checking the owner.
func (s *EventService) owned(ctx context.Context, callerID, id int64, forbidden string) (*domain.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.OwnedBy(callerID) {
		return nil, apperrors.NewForbidden(forbidden)
	}
	return event, nil
}

func changedPayload(event *domain.Event) events.EventChangedPayload {
	return events.EventChangedPayload{Name: event.Name, Date: event.Date, Location: event.Location}
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("type", string(event.Type)),
			zap.Int64("event_id", event.EventID),
			zap.Error(err))
	}
}
