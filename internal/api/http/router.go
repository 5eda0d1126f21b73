package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/asta-dev/fintech-sandbox/internal/api/http/handlers"
	"github.com/asta-dev/fintech-sandbox/internal/auth"
	"github.com/asta-dev/fintech-sandbox/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UsersHandler
	Roles          *handlers.RolesHandler
	Accounts       *handlers.AccountsHandler
	Subscriptions  *handlers.SubscriptionsHandler
	Payments       *handlers.PaymentsHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Info)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Auth.Me)

	userGroup := api.Group("/user", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	userGroup.Post("/admin/add", auth.RequireLevel(domain.LevelAdmin), cfg.Users.AdminAdd)
	userGroup.Get("/get/:identifier", cfg.Users.Get)
	userGroup.Get("/all", auth.RequireLevel(domain.LevelAdmin), cfg.Users.All)
	userGroup.Put("/mod", cfg.Users.Mod)

	roleGroup := api.Group("/role")
	roleGroup.Get("/all", cfg.Roles.All)
	roleAdmin := roleGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireLevel(domain.LevelAdmin))
	roleAdmin.Post("/add", cfg.Roles.Add)
	roleAdmin.Put("/mod", cfg.Roles.Mod)
	roleAdmin.Delete("/del", cfg.Roles.Del)

	accountGroup := api.Group("/accounts", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	accountGroup.Post("/transfer", cfg.Accounts.Transfer)
	accountGroup.Get("/balance/me", cfg.Accounts.Balance)
	accountGroup.Get("/:id/transactions", cfg.Accounts.Transactions)
	accountGroup.Get("/:id", cfg.Accounts.Get)
	accountGroup.Put("/:id", cfg.Accounts.Update)

	subGroup := api.Group("/subscriptions", cfg.AuthMiddleware.Handle, auth.RequireAuth())
	subGroup.Get("/", cfg.Subscriptions.Mine)
	subGroup.Get("/me", cfg.Subscriptions.Active)
	subGroup.Get("/filter", auth.RequireLevel(domain.LevelDeveloper), cfg.Subscriptions.Filter)
	subGroup.Put("/:id", auth.RequireLevel(domain.LevelDeveloper), cfg.Subscriptions.Update)

	paymentGroup := api.Group("/payment")
	paymentGroup.Get("/products", cfg.Payments.Products)
	paymentGroup.Post("/create-checkout-session", cfg.AuthMiddleware.Handle, auth.RequireAuth(), cfg.Payments.CreateCheckoutSession)
	paymentGroup.Post("/webhook", cfg.Payments.Webhook)
}
