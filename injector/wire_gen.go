// Code generated by Wire. DO NOT EDIT.

//go:generate go run -mod=mod github.com/google/wire/cmd/wire
//go:build !wireinject
// +build !wireinject

package injector

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/wire"
	"github.com/questforge/points-core/internal/app/deliveries"
	"github.com/questforge/points-core/internal/app/middlewares"
	"github.com/questforge/points-core/internal/app/services"
	"github.com/questforge/points-core/internal/infrastructures"
)

// Injectors from injector.go:

// InitializeApplication initializes the application with all its dependencies
func InitializeApplication() (*Application, error) {
	healthHandler := deliveries.NewHealthHandler()
	db := infrastructures.NewDatabase()
	validator := infrastructures.NewValidator()
	authService := services.NewAuthService()
	accountService := services.NewAccountService(db, validator, authService)
	ledgerService := services.NewLedgerService(db)
	badgeService := services.NewBadgeService(db, validator, ledgerService)
	authMiddleware := middlewares.NewAuthMiddleware(authService, accountService)
	tenantMiddleware := middlewares.NewTenantMiddleware()
	accountHandler := deliveries.NewAccountHandler(accountService, badgeService, authMiddleware, tenantMiddleware)
	questService := services.NewQuestService(db, validator)
	submissionService := services.NewSubmissionService(db, validator, ledgerService, questService, badgeService)
	questHandler := deliveries.NewQuestHandler(questService, submissionService, authMiddleware, tenantMiddleware)
	submissionHandler := deliveries.NewSubmissionHandler(submissionService, authMiddleware, tenantMiddleware)
	itemService := services.NewItemService(db, validator, ledgerService)
	itemHandler := deliveries.NewItemHandler(itemService, authMiddleware, tenantMiddleware)
	auditService := services.NewAuditService(db)
	orderService := services.NewOrderService(db, validator, ledgerService, itemService, badgeService, auditService)
	orderHandler := deliveries.NewOrderHandler(orderService, auditService, authMiddleware, tenantMiddleware)
	badgeHandler := deliveries.NewBadgeHandler(badgeService, authMiddleware, tenantMiddleware)
	auditHandler := deliveries.NewAuditHandler(auditService, authMiddleware, tenantMiddleware)
	client := infrastructures.NewRedisClient()
	string2 := _wireStringValue
	redisRateLimiter := middlewares.NewRedisRateLimiter(client, string2)
	rateLimitMiddleware := middlewares.NewRateLimitMiddleware(redisRateLimiter)
	scheduler := services.NewScheduler(questService, orderService)
	application := &Application{
		HealthHandler:       healthHandler,
		AccountHandler:      accountHandler,
		QuestHandler:        questHandler,
		SubmissionHandler:   submissionHandler,
		ItemHandler:         itemHandler,
		OrderHandler:        orderHandler,
		BadgeHandler:        badgeHandler,
		AuditHandler:        auditHandler,
		RateLimitMiddleware: rateLimitMiddleware,
		Scheduler:           scheduler,
	}
	return application, nil
}

var (
	_wireStringValue = "points-core"
)

// injector.go:

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

	router.Use(app.RateLimitMiddleware.LimitByIP(middlewares.PublicAPILimit))

	protectedGroup := router.Group("")
	protectedGroup.Use(app.RateLimitMiddleware.LimitByAccount(middlewares.AuthenticatedAPILimit))

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
var infrastructureSet = wire.NewSet(infrastructures.NewDatabase, infrastructures.NewRedisClient, infrastructures.NewValidator, wire.Value("points-core"), wire.Bind(new(middlewares.RateLimiter), new(*middlewares.RedisRateLimiter)), middlewares.NewRedisRateLimiter)

// Service providers
var serviceSet = wire.NewSet(services.NewAuthService, services.NewLedgerService, services.NewAccountService, services.NewQuestService, services.NewSubmissionService, services.NewBadgeService, services.NewItemService, services.NewOrderService, services.NewAuditService, services.NewScheduler)

// Middleware providers
var middlewareSet = wire.NewSet(middlewares.NewAuthMiddleware, middlewares.NewTenantMiddleware, middlewares.NewRateLimitMiddleware)

// Handler providers
var handlerSet = wire.NewSet(deliveries.NewHealthHandler, deliveries.NewAccountHandler, deliveries.NewQuestHandler, deliveries.NewSubmissionHandler, deliveries.NewItemHandler, deliveries.NewOrderHandler, deliveries.NewBadgeHandler, deliveries.NewAuditHandler, wire.Struct(new(Application), "*"))
