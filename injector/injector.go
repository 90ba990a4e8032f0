//go:build wireinject
// +build wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/questforge/points-core/internal/app/deliveries"
	"github.com/questforge/points-core/internal/app/middlewares"
	"github.com/questforge/points-core/internal/app/services"
	"github.com/questforge/points-core/internal/infrastructures"
)

// Application represents the main application container for points-core
type Application struct {
	HealthHandler       *deliveries.HealthHandler
	AccountHandler      *deliveries.AccountHandler
	QuestHandler        *deliveries.QuestHandler
	SubmissionHandler   *deliveries.SubmissionHandler
	ItemHandler         *deliveries.ItemHandler
	OrderHandler        *deliveries.OrderHandler
	BadgeHandler        *deliveries.BadgeHandler
	AuditHandler        *deliveries.AuditHandler
	RateLimitMiddleware *middlewares.RateLimitMiddleware
	Scheduler           *services.Scheduler
}

// RegisterRoutes registers all application routes using a Fiber router
func (app *Application) RegisterRoutes(router fiber.Router) {
	// Apply global rate limit for public API
	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	// Authenticated endpoints with account-based rate limit
	protectedGroup := router.Group("")
	protectedGroup.Use(app.RateLimitMiddleware.LimitByAccount(middlewares.AuthenticatedAPILimit))

	// Register all handlers
	app.HealthHandler.RegisterRoutes(router)
	app.AccountHandler.RegisterRoutes(router)
	app.QuestHandler.RegisterRoutes(router)
	app.SubmissionHandler.RegisterRoutes(router)
	app.ItemHandler.RegisterRoutes(router)
	app.OrderHandler.RegisterRoutes(router)
	app.BadgeHandler.RegisterRoutes(router)
	app.AuditHandler.RegisterRoutes(router)
}

// Infrastructure providers
var infrastructureSet = wire.NewSet(
	infrastructures.NewDatabase,
	infrastructures.NewRedisClient,
	infrastructures.NewValidator,
	wire.Value("points-core"),
	wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)),
	middlewares.NewRedisRateLimiter,
)

// Service providers
var serviceSet = wire.NewSet(
	services.NewAuthService,
	services.NewLedgerService,
	services.NewAccountService,
	services.NewQuestService,
	services.NewSubmissionService,
	services.NewBadgeService,
	services.NewItemService,
	services.NewOrderService,
	services.NewAuditService,
	services.NewScheduler,
)

// Middleware providers
var middlewareSet = wire.NewSet(
	middlewares.NewAuthMiddleware,
	middlewares.NewTenantMiddleware,
	middlewares.NewRateLimitMiddleware,
)

// Handler providers
var handlerSet = wire.NewSet(
	deliveries.NewHealthHandler,
	deliveries.NewAccountHandler,
	deliveries.NewQuestHandler,
	deliveries.NewSubmissionHandler,
	deliveries.NewItemHandler,
	deliveries.NewOrderHandler,
	deliveries.NewBadgeHandler,
	deliveries.NewAuditHandler,
	wire.Struct(new(Application), "*"), // This tells Wire to build the Application struct
)

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	wire.Build(
		infrastructureSet,
		serviceSet,
		middlewareSet,
		handlerSet,
	)
	return &Application{}, nil // Wire will populate the Application struct based on handlerSet
}
