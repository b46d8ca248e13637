package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eventhub/internal/api/http/handlers"
	"github.com/spec-kit/eventhub/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Events         *handlers.EventsHandler
	RSVP           *handlers.RSVPHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	bearer := cfg.AuthMiddleware.Handle

	events := app.Group("/events")
	// Fixed paths before the :id wildcard.
	events.Get("/public", cfg.Events.ListPublic)
	events.Get("/mine", bearer, cfg.Events.ListMine)
	events.Get("/pending", bearer, cfg.Events.ListPending)

	events.Post("/", bearer, cfg.Events.Create)
	events.Get("/:id", cfg.Events.Get)
	events.Patch("/:id", bearer, cfg.Events.Update)
	events.Delete("/:id", bearer, cfg.Events.Delete)
	events.Patch("/:id/status", bearer, cfg.Events.ChangeStatus)

	rsvp := app.Group("/rsvp")
	rsvp.Post("/:eventId", cfg.RSVP.Submit)
	rsvp.Get("/:eventId", bearer, cfg.RSVP.List)
}
