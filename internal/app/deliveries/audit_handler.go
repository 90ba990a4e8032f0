package deliveries

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/middlewares"
	"github.com/questforge/points-core/internal/app/pkg"
	"github.com/questforge/points-core/internal/app/services"
)

type AuditHandler struct {
	auditService     *services.AuditService
	authMiddleware   *middlewares.AuthMiddleware
	tenantMiddleware *middlewares.TenantMiddleware
}

func NewAuditHandler(auditService *services.AuditService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *AuditHandler {
	return &AuditHandler{auditService: auditService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *AuditHandler) RegisterRoutes(router fiber.Router) {
	auditGroup := router.Group("/audits", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount, h.authMiddleware.RequireStaff)

	auditGroup.Get("/", h.GetLedgerAudits)
}

// GetLedgerAudits lists ledger mutations for the school, optionally filtered
// by entity id.
func (h *AuditHandler) GetLedgerAudits(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	var entityID *uuid.UUID
	if entityStr := c.Query("entity_id"); entityStr != "" {
		parsed, err := uuid.Parse(entityStr)
		if err != nil {
			return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid entity id"))
		}
		entityID = &parsed
	}

	audits, err := h.auditService.GetLedgerAudits(schoolID, parsePagination(c), entityID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, audits)
}
