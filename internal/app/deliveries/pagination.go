package deliveries

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/questforge/points-core/internal/app/models"
)

// parsePagination reads page/limit/order/order_field query parameters with
// safe defaults.
func parsePagination(c *fiber.Ctx) *models.PaginationRequest {
	pagination := &models.PaginationRequest{
		Page:       1,
		Limit:      10,
		Order:      "desc",
		OrderField: "created_at",
	}

	if page, err := strconv.Atoi(c.Query("page", "1")); err == nil && page > 0 {
		pagination.Page = page
	}

	if limit, err := strconv.Atoi(c.Query("limit", "10")); err == nil && limit > 0 {
		pagination.Limit = limit
	}

	if order := c.Query("order", "desc"); order == "asc" || order == "desc" {
		pagination.Order = order
	}

	if orderField := c.Query("order_field"); orderField != "" {
		pagination.OrderField = orderField
	}

	return pagination
}

// parseLimitOffset reads limit/offset query parameters with safe defaults.
func parseLimitOffset(c *fiber.Ctx) (int, int) {
	limit := 10
	offset := 0

	if parsed, err := strconv.Atoi(c.Query("limit", "10")); err == nil && parsed > 0 {
		limit = parsed
	}

	if parsed, err := strconv.Atoi(c.Query("offset", "0")); err == nil && parsed >= 0 {
		offset = parsed
	}

	return limit, offset
}
