package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/pkg"
)

// SchoolHeader carries the tenant identifier resolved upstream (gateway or
// subdomain router). Every ledger key downstream is namespaced by it.
const SchoolHeader = "X-School-ID"

type TenantMiddleware struct {
}

func NewTenantMiddleware() *TenantMiddleware {
	return &TenantMiddleware{}
}

// RequireSchool extracts and validates the tenant identifier. Requests
// without a school scope never reach a service.
func (m *TenantMiddleware) RequireSchool(c *fiber.Ctx) error {
	header := c.Get(SchoolHeader)
	if header == "" {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Missing "+SchoolHeader+" header"))
	}

	schoolID, err := uuid.Parse(header)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid "+SchoolHeader+" header"))
	}

	c.Locals("school_id", schoolID)

	return c.Next()
}
