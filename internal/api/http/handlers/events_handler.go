package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/repository"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// EventsHandler manages event endpoints.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// List GET /api/events.
func (h *EventsHandler) List(c *fiber.Ctx) error {
	var query dto.EventListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	filter, err := eventFilter(query)
	if err != nil {
		return err
	}
	events, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventList(events)})
}

// Get GET /api/events/:id.
func (h *EventsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "invalid event ID")
	if err != nil {
		return err
	}
	event, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Create POST /api/events.
func (h *EventsHandler) Create(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := req.ParsedDate()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"date": *req.Date})
	}

	input := service.EventInput{
		Name:        deref(req.Name),
		Description: deref(req.Description),
		Location:    deref(req.Location),
	}
	if date != nil {
		input.Date = *date
	}
	event, err := h.service.Create(c.UserContext(), identity.SubjectID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Update PUT /api/events/:id.
func (h *EventsHandler) Update(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "invalid event ID")
	if err != nil {
		return err
	}
	var req dto.EventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	date, err := req.ParsedDate()
	if err != nil {
		return apperrors.NewValidationError(err.Error(), map[string]any{"date": *req.Date})
	}

	event, err := h.service.Update(c.UserContext(), identity.SubjectID, id, repository.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventResponse(event)})
}

// Delete DELETE /api/events/:id.
func (h *EventsHandler) Delete(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "invalid event ID")
	if err != nil {
		return err
	}
	event, err := h.service.Delete(c.UserContext(), identity.SubjectID, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"message": "event deleted successfully",
		"event":   dto.NewEventResponse(event),
	}})
}

// ListMine GET /api/events/user/events.
func (h *EventsHandler) ListMine(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	events, err := h.service.ListByOwner(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEventList(events)})
}

func eventFilter(query dto.EventListQuery) (service.EventFilter, error) {
	filter := service.EventFilter{Search: query.Search, Location: query.Location}
	if query.StartDate == "" || query.EndDate == "" {
		return filter, nil
	}
	start, err := dto.ParseDate(query.StartDate)
	if err != nil {
		return filter, apperrors.NewValidationError(err.Error(), map[string]any{"startDate": query.StartDate})
	}
	end, err := dto.ParseDate(query.EndDate)
	if err != nil {
		return filter, apperrors.NewValidationError(err.Error(), map[string]any{"endDate": query.EndDate})
	}
	filter.StartDate, filter.EndDate = &start, &end
	return filter, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
