package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/middlewares"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/app/pkg"
	"github.com/questforge/points-core/internal/app/services"
)

type AccountHandler struct {
	accountService   *services.AccountService
	badgeService     *services.BadgeService
	authMiddleware   *middlewares.AuthMiddleware
	tenantMiddleware *middlewares.TenantMiddleware
}

func NewAccountHandler(accountService *services.AccountService, badgeService *services.BadgeService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *AccountHandler {
	return &AccountHandler{accountService: accountService, badgeService: badgeService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountGroup := router.Group("/accounts", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser)

	accountGroup.Post("/", h.CreateAccount)
	accountGroup.Patch("/:id/role", h.authMiddleware.AuthAccount, h.authMiddleware.RequireAdmin, h.UpdateAccountRole)
	accountGroup.Get("/me", h.authMiddleware.AuthAccount, h.GetMe)
	accountGroup.Get("/me/badges", h.authMiddleware.AuthAccount, h.GetMyBadges)
	accountGroup.Get("/", h.authMiddleware.AuthAccount, h.GetLeaderboard)
	accountGroup.Get("/:id", h.authMiddleware.AuthAccount, h.authMiddleware.RequireStaff, h.GetAccountByID)
	accountGroup.Get("/:id/badges", h.authMiddleware.AuthAccount, h.authMiddleware.RequireStaff, h.GetAccountBadges)
}

// CreateAccount registers the caller as a STUDENT. Roles are never taken from
// the request body; elevation goes through the admin-only role endpoint.
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	accessToken := c.Get("Authorization")

	account, err := h.accountService.CreateAccount(schoolID, accessToken)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) UpdateAccountRole(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid account id"))
	}

	var req models.AccountRoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	account, err := h.accountService.UpdateAccountRole(schoolID, accountID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) GetMe(c *fiber.Ctx) error {
	account := c.Locals("account").(*models.Account)
	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) GetMyBadges(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	badges, err := h.badgeService.GetAccountBadges(schoolID, account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badges)
}

// GetLeaderboard lists accounts in the school ordered by point balance.
func (h *AccountHandler) GetLeaderboard(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	accounts, err := h.accountService.GetAccounts(schoolID, parsePagination(c))
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, accounts)
}

func (h *AccountHandler) GetAccountByID(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid account id"))
	}

	account, err := h.accountService.GetAccount(schoolID, accountID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, account)
}

func (h *AccountHandler) GetAccountBadges(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	accountID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid account id"))
	}

	badges, err := h.badgeService.GetAccountBadges(schoolID, accountID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badges)
}
