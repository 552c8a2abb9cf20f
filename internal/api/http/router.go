package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/transit-booking/internal/api/http/handlers"
	"github.com/spec-kit/transit-booking/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. The booking surface is deliberately
// unauthenticated; only /me requires a bearer token.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/user", cfg.Users.Upsert)
	app.Put("/user", cfg.Users.Upsert)
	app.Get("/user", cfg.Users.List)
	app.Get("/user/:id", cfg.Users.Get)
	app.Post("/user/:id/otp", cfg.Users.VerifyOTP)

	app.Post("/user/:id/ticket", cfg.Tickets.Create)
	app.Put("/user/:id/ticket", cfg.Tickets.Create)
	app.Get("/user/:id/ticket", cfg.Tickets.List)

	app.Get("/ticket/:id", cfg.Tickets.Validity)
	app.Post("/ticket/:id", cfg.Tickets.CheckIn)
	app.Put("/ticket/:id", cfg.Tickets.CheckOut)

	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)
}
