package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/middlewares"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/app/pkg"
	"github.com/questforge/points-core/internal/app/services"
)

type BadgeHandler struct {
	badgeService     *services.BadgeService
	authMiddleware   *middlewares.AuthMiddleware
	tenantMiddleware *middlewares.TenantMiddleware
}

func NewBadgeHandler(badgeService *services.BadgeService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *BadgeHandler {
	return &BadgeHandler{badgeService: badgeService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *BadgeHandler) RegisterRoutes(router fiber.Router) {
	badgeGroup := router.Group("/badges", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount)

	badgeGroup.Get("/", h.GetBadges)
	badgeGroup.Get("/:id", h.GetBadge)
	badgeGroup.Post("/", h.authMiddleware.RequireStaff, h.CreateBadge)
	badgeGroup.Patch("/:id", h.authMiddleware.RequireStaff, h.UpdateBadge)
}

func (h *BadgeHandler) CreateBadge(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	var req models.BadgeCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	badge, err := h.badgeService.CreateBadge(schoolID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badge)
}

func (h *BadgeHandler) GetBadges(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	activeOnly, _ := strconv.ParseBool(c.Query("active_only", "false"))

	badges, err := h.badgeService.GetBadges(schoolID, activeOnly)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badges)
}

func (h *BadgeHandler) GetBadge(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	badgeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid badge id"))
	}

	badge, err := h.badgeService.GetBadge(schoolID, badgeID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badge)
}

func (h *BadgeHandler) UpdateBadge(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	badgeID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid badge id"))
	}

	var req models.BadgeUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	badge, err := h.badgeService.UpdateBadge(schoolID, badgeID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, badge)
}
