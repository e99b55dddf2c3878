package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/dto"
	"github.com/spec-kit/event-service/internal/auth"
	"github.com/spec-kit/event-service/internal/service"
	apperrors "github.com/spec-kit/event-service/pkg/util"
)

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	auth         *service.AuthService
	guard        *auth.Guard
	secureCookie bool
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, guard *auth.Guard, secureCookie bool) *UsersHandler {
	return &UsersHandler{auth: authService, guard: guard, secureCookie: secureCookie}
}

// Register handles POST /api/auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req, "all fields are required"); err != nil {
		return err
	}

	user, session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, session.Token, session.ExpiresAt, h.secureCookie)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.SessionResponse{
			User: dto.NewUserResponse(user),
			Auth: dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// Login handles POST /api/auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := dto.Validate(&req, "email and password are required"); err != nil {
		return err
	}

	user, session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	auth.SetSessionCookie(c, session.Token, session.ExpiresAt, h.secureCookie)

	return c.JSON(fiber.Map{
		"data": dto.SessionResponse{
			User: dto.NewUserResponse(user),
			Auth: dto.AuthResponse{Token: session.Token, ExpiresAt: session.ExpiresAt},
		},
	})
}

// Logout handles POST /api/auth/logout. It needs no valid session: the
// cookie is always cleared, and a session that still verifies is revoked
// when revocation is enabled.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if credential := auth.ExtractCredential(c); credential != "" {
		session, err := h.guard.Authenticate(c.UserContext(), credential)
		switch {
		case err == nil:
			if err := h.auth.Logout(c.UserContext(), session); err != nil {
				return err
			}
		case !errors.Is(err, auth.ErrInvalidCredential):
			return err
		}
	}
	auth.ClearSessionCookie(c, h.secureCookie)
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "logged out successfully"}})
}

// Profile handles GET /api/auth/profile.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.auth.Profile(c.UserContext(), identity.SubjectID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user)})
}
