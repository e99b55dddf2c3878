package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// ParticipantsHandler manages registration endpoints.
type ParticipantsHandler struct {
	service *service.ParticipantService
}

// NewParticipantsHandler constructs handler.
func NewParticipantsHandler(participantService *service.ParticipantService) *ParticipantsHandler {
	return &ParticipantsHandler{service: participantService}
}

// Register POST /api/events/:id/register.
func (h *ParticipantsHandler) Register(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "invalid event ID")
	if err != nil {
		return err
	}
	participant, err := h.service.Register(c.UserContext(), eventID, identity.SubjectID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewParticipantResponse(participant)})
}

// Cancel PUT /api/events/:eventId/participants/:userId/cancel.
func (h *ParticipantsHandler) Cancel(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "eventId", "invalid event ID")
	if err != nil {
		return err
	}
	participantID, err := pathID(c, "userId", "invalid participant ID")
	if err != nil {
		return err
	}
	// An empty body falls through to the missing-reason check.
	var req dto.CancelRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
	}
	participant, err := h.service.Cancel(c.UserContext(), identity.SubjectID, eventID, participantID, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewParticipantResponse(participant)})
}

// ListParticipants GET /api/events/:id/participants.
func (h *ParticipantsHandler) ListParticipants(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	eventID, err := pathID(c, "id", "invalid event ID")
	if err != nil {
		return err
	}
	participants, err := h.service.ListParticipants(c.UserContext(), identity.SubjectID, eventID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewParticipantList(participants)})
}

// ListParticipating GET /api/user/participating.
func (h *ParticipantsHandler) ListParticipating(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListParticipating(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewParticipatingList(items)})
}
