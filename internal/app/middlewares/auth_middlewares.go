package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/app/pkg"
	"github.com/questforge/points-core/internal/app/services"
)

type AuthMiddleware struct {
	authService    *services.AuthService
	accountService *services.AccountService
}

func NewAuthMiddleware(authService *services.AuthService, accountService *services.AccountService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService, accountService: accountService}
}

// AuthUser resolves the bearer token against the external identity service.
func (m *AuthMiddleware) AuthUser(c *fiber.Ctx) error {
	token := c.Get("Authorization")
	if token == "" {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	token = strings.Replace(token, "Bearer ", "", 1)

	authUser, err := m.authService.GetCurrentUser(token)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError(err.Error()))
	}

	c.Locals("auth_user", authUser)

	return c.Next()
}

// AuthAccount maps the authenticated identity to its account in the current
// school. Requires AuthUser and RequireSchool to have run.
func (m *AuthMiddleware) AuthAccount(c *fiber.Ctx) error {
	authUser, ok := c.Locals("auth_user").(*models.AuthUser)
	if !ok || authUser == nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("User is not authenticated"))
	}

	schoolID, ok := c.Locals("school_id").(uuid.UUID)
	if !ok {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("School scope is missing"))
	}

	account, err := m.accountService.GetAccountByAuthID(schoolID, authUser.ID)
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError("No account registered for this school"))
	}

	c.Locals("account", account)

	return c.Next()
}

// RequireStaff allows only teacher and admin accounts through. Requires
// AuthAccount to have run.
func (m *AuthMiddleware) RequireStaff(c *fiber.Ctx) error {
	account, ok := c.Locals("account").(*models.Account)
	if !ok || account == nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	if account.Role != models.AccountRoleTeacher && account.Role != models.AccountRoleAdmin {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Staff role required"))
	}

	return c.Next()
}

// RequireAdmin allows only admin accounts through. Requires AuthAccount to
// have run.
func (m *AuthMiddleware) RequireAdmin(c *fiber.Ctx) error {
	account, ok := c.Locals("account").(*models.Account)
	if !ok || account == nil {
		return pkg.ErrorResponse(c, errors.NewUnauthorizedError())
	}

	if account.Role != models.AccountRoleAdmin {
		return pkg.ErrorResponse(c, errors.NewForbiddenError("Admin role required"))
	}

	return c.Next()
}
