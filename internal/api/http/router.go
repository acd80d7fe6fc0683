package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civic-care/issue-service/internal/api/http/handlers"
	"github.com/civic-care/issue-service/internal/auth"
	"github.com/civic-care/issue-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	ServiceName    string
	Version        string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Issues         *handlers.IssuesHandler
	AdminIssues    *handlers.AdminIssuesHandler
	StaffIssues    *handlers.StaffIssuesHandler
	StaffAccounts  *handlers.StaffAccountsHandler
	Payments       *handlers.PaymentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	requireAuth := cfg.AuthMiddleware.Handle
	requireAdmin := auth.RequireRole(domain.RoleAdmin)
	requireStaff := auth.RequireRole(domain.RoleStaff)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": cfg.ServiceName, "version": cfg.Version})
	})
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/setup-admin", cfg.Users.SetupAdmin)

	// Registration is open so the very first account (and later the first
	// admin via /setup-admin) can exist before anyone holds a token. It must
	// register ahead of the authenticated /users group to win the match.
	app.Post("/users", cfg.Users.Register)

	users := app.Group("/users", requireAuth)
	users.Get("/me", cfg.Users.Me)
	users.Get("/profile/:email", cfg.Users.GetProfile)
	users.Patch("/profile", cfg.Users.UpdateProfile)
	users.Get("/", requireAdmin, cfg.Users.List)
	users.Patch("/:email/toggle-block", requireAdmin, cfg.Users.ToggleBlock)

	// Static paths must register before the :id route.
	issues := app.Group("/issues")
	issues.Get("/resolved", cfg.Issues.ResolvedFeed)
	issues.Get("/", cfg.Issues.List)
	issues.Get("/:id", cfg.Issues.Get)

	issues.Post("/", requireAuth, cfg.Issues.Create)
	issues.Patch("/:id/upvote", requireAuth, cfg.Issues.Upvote)
	issues.Patch("/:id", requireAuth, cfg.Issues.Update)
	issues.Delete("/:id", requireAuth, cfg.Issues.Delete)

	app.Get("/my-issues", requireAuth, cfg.Issues.ListMine)

	payments := app.Group("/payments", requireAuth)
	payments.Post("/subscribe", cfg.Payments.Subscribe)
	payments.Get("/my", cfg.Payments.ListMine)

	staffGroup := app.Group("/staff", requireAuth, requireStaff)
	staffGroup.Get("/issues", cfg.StaffIssues.List)
	staffGroup.Patch("/issues/:id/status", cfg.StaffIssues.UpdateStatus)

	adminGroup := app.Group("/admin", requireAuth, requireAdmin)
	adminGroup.Patch("/users/:email/role", cfg.Users.ChangeRole)

	adminGroup.Get("/issues", cfg.AdminIssues.List)
	adminGroup.Patch("/issues/:id/assign-staff", cfg.AdminIssues.Assign)
	adminGroup.Patch("/issues/:id/reject", cfg.AdminIssues.Reject)
	adminGroup.Get("/stats", cfg.AdminIssues.Stats)

	adminGroup.Get("/staff", cfg.StaffAccounts.List)
	adminGroup.Post("/staff", cfg.StaffAccounts.Create)
	adminGroup.Patch("/staff/:email", cfg.StaffAccounts.Update)
	adminGroup.Delete("/staff/:email", cfg.StaffAccounts.Delete)

	adminGroup.Get("/payments", cfg.Payments.ListAll)
}
