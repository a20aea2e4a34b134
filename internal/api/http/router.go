package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/facility-service/internal/api/http/handlers"
	"github.com/spec-kit/facility-service/internal/auth"
	"github.com/spec-kit/facility-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Requests       *handlers.RequestsHandler
	Assets         *handlers.AssetsHandler
	Users          *handlers.UsersHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Get("/auth/me", cfg.Auth.Me)

	api.Get("/dashboard", cfg.Dashboard.GetSummary)

	requests := api.Group("/requests")
	requests.Post("", cfg.Requests.CreateRequest)
	requests.Get("", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Patch("/:id", cfg.Requests.EditRequest)
	requests.Post("/:id/assign", cfg.Requests.AssignRequest)
	requests.Post("/:id/approve", cfg.Requests.ApproveRequest)
	requests.Post("/:id/reject", cfg.Requests.RejectRequest)

	assets := api.Group("/assets")
	assets.Get("", cfg.Assets.ListAssets)
	assets.Get("/:id", cfg.Assets.GetAsset)
	assets.Post("", auth.RequireCapability(func(c domain.Capabilities) bool { return c.CanManageAssets }), cfg.Assets.CreateAsset)
	assets.Put("/:id", auth.RequireCapability(func(c domain.Capabilities) bool { return c.CanManageAssets }), cfg.Assets.UpdateAsset)

	users := api.Group("/users")
	users.Get("/technicians", cfg.Users.ListTechnicians)
	manageUsers := auth.RequireCapability(func(c domain.Capabilities) bool { return c.CanManageUsers })
	users.Get("", manageUsers, cfg.Users.ListUsers)
	users.Post("", manageUsers, cfg.Users.CreateUser)
	users.Get("/:id", manageUsers, cfg.Users.GetUser)
	users.Patch("/:id", manageUsers, cfg.Users.UpdateUser)
}
