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

type OrderHandler struct {
	orderService     *services.OrderService
	auditService     *services.AuditService
	authMiddleware   *middlewares.AuthMiddleware
	tenantMiddleware *middlewares.TenantMiddleware
}

func NewOrderHandler(orderService *services.OrderService, auditService *services.AuditService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *OrderHandler {
	return &OrderHandler{orderService: orderService, auditService: auditService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderGroup := router.Group("/orders", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount)

	orderGroup.Post("/", h.CreateOrder)
	orderGroup.Get("/me", h.GetMyOrders)
	orderGroup.Get("/:id", h.GetOrder)
	orderGroup.Get("/:id/history", h.authMiddleware.RequireStaff, h.GetOrderHistory)
	orderGroup.Post("/:id/cancel", h.CancelOrder)
	orderGroup.Post("/:id/ready", h.authMiddleware.RequireStaff, h.MarkOrderReady)
	orderGroup.Post("/:id/claim", h.authMiddleware.RequireStaff, h.ClaimOrder)
}

func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	var req models.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	order, err := h.orderService.Purchase(schoolID, account.ID, req.ItemID, req.Quantity)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, order)
}

func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	limit, offset := parseLimitOffset(c)

	orders, err := h.orderService.GetOrdersByAccount(schoolID, account.ID, limit, offset)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order id"))
	}

	order, err := h.orderService.GetOrder(schoolID, orderID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	if account.Role == models.AccountRoleStudent && order.AccountID != account.ID {
		return pkg.ErrorResponse(c, errors.NewForbiddenError())
	}

	return pkg.SuccessResponse(c, order)
}

func (h *OrderHandler) GetOrderHistory(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order id"))
	}

	// Confirm the order belongs to this school before exposing history.
	if _, err := h.orderService.GetOrder(schoolID, orderID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	history, err := h.auditService.GetOrderStatusHistory(orderID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, history)
}

// CancelOrder refunds points and restores stock. Students can only cancel
// their own orders.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order id"))
	}

	if account.Role == models.AccountRoleStudent {
		order, err := h.orderService.GetOrder(schoolID, orderID)
		if err != nil {
			return pkg.ErrorResponse(c, err)
		}
		if order.AccountID != account.ID {
			return pkg.ErrorResponse(c, errors.NewForbiddenError())
		}
	}

	order, err := h.orderService.Cancel(schoolID, orderID, &account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, order)
}

func (h *OrderHandler) MarkOrderReady(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order id"))
	}

	order, err := h.orderService.MarkReady(schoolID, orderID, account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, order)
}

func (h *OrderHandler) ClaimOrder(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	orderID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid order id"))
	}

	order, err := h.orderService.Claim(schoolID, orderID, account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, order)
}
