package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/event-service/internal/api/http/handlers"
	"github.com/spec-kit/event-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Users        *handlers.UsersHandler
	Events       *handlers.EventsHandler
	Participants *handlers.ParticipantsHandler
	Guard        *auth.Guard
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authenticated := cfg.Guard.RequireAuthenticated()
	owner := cfg.Guard.RequireOwnership("id")

	api := app.Group("/api")
	api.Get("/health", cfg.Health.Health)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Post("/logout", cfg.Users.Logout)
	authGroup.Get("/profile", authenticated, cfg.Users.Profile)

	events := api.Group("/events")
	events.Get("/", cfg.Events.List)
	events.Get("/user/events", authenticated, cfg.Events.ListMine)
	events.Get("/:id", cfg.Events.Get)
	events.Post("/", authenticated, cfg.Events.Create)
	events.Put("/:id", authenticated, owner, cfg.Events.Update)
	events.Delete("/:id", authenticated, owner, cfg.Events.Delete)

	events.Post("/:id/register", authenticated, cfg.Participants.Register)
	events.Get("/:id/participants", authenticated, cfg.Participants.ListParticipants)
	events.Put("/:eventId/participants/:userId/cancel", authenticated, cfg.Participants.Cancel)

	api.Get("/user/participating", authenticated, cfg.Participants.ListParticipating)
}
