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

type ItemHandler struct {
	itemService      *services.ItemService
	authMiddleware   *middlewares.AuthMiddleware
	tenantMiddleware *middlewares.TenantMiddleware
}

func NewItemHandler(itemService *services.ItemService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *ItemHandler {
	return &ItemHandler{itemService: itemService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *ItemHandler) RegisterRoutes(router fiber.Router) {
	itemGroup := router.Group("/items", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount)

	itemGroup.Get("/", h.GetItems)
	itemGroup.Get("/:id", h.GetItem)
	itemGroup.Post("/", h.authMiddleware.RequireStaff, h.CreateItem)
	itemGroup.Patch("/:id", h.authMiddleware.RequireStaff, h.UpdateItem)
	itemGroup.Delete("/:id", h.authMiddleware.RequireStaff, h.DeleteItem)
	itemGroup.Post("/:id/restock", h.authMiddleware.RequireStaff, h.RestockItem)
}

func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	var req models.ItemCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	item, err := h.itemService.CreateItem(schoolID, &req, &account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, item)
}

func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	var kind *models.ItemKind
	if kindStr := c.Query("kind"); kindStr != "" {
		parsed := models.ItemKind(kindStr)
		kind = &parsed
	}

	activeOnly, _ := strconv.ParseBool(c.Query("active_only", "false"))

	items, err := h.itemService.GetItems(schoolID, parsePagination(c), kind, activeOnly)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, items)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid item id"))
	}

	item, err := h.itemService.GetItem(schoolID, itemID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, item)
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid item id"))
	}

	var req models.ItemUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	item, err := h.itemService.UpdateItem(schoolID, itemID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, item)
}

func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid item id"))
	}

	if err := h.itemService.DeleteItem(schoolID, itemID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

func (h *ItemHandler) RestockItem(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid item id"))
	}

	var req models.ItemRestockRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	item, err := h.itemService.Restock(schoolID, itemID, req.Quantity, &account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, item)
}
