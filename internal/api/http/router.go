package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/relief-service/internal/api/http/handlers"
	"github.com/spec-kit/relief-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	HelpRequests   *handlers.HelpRequestsHandler
	Tickets        *handlers.TicketsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Post("/password/reset/request", cfg.Accounts.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Accounts.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Accounts.ChangePassword)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	protected.Get("/profile", cfg.Accounts.Profile)

	protected.Get("/help-requests", cfg.HelpRequests.List)
	protected.Post("/help-requests", cfg.HelpRequests.Create)
	protected.Get("/help-requests/:id", cfg.HelpRequests.Get)
	protected.Put("/help-requests/:id", cfg.HelpRequests.Update)
	protected.Delete("/help-requests/:id", cfg.HelpRequests.Delete)

	protected.Get("/tickets", cfg.Tickets.List)
	protected.Post("/tickets", cfg.Tickets.Create)
	protected.Get("/tickets/:id", cfg.Tickets.Get)
	protected.Post("/tickets/:id/replies", cfg.Tickets.Reply)
	protected.Post("/tickets/:id/close", cfg.Tickets.Close)
	protected.Post("/tickets/:id/reopen", cfg.Tickets.Reopen)

	staff := app.Group("/staff", cfg.AuthMiddleware.Handle, auth.RequireStaff())
	staff.Post("/help-requests/:id/advance", cfg.HelpRequests.Advance)
}
