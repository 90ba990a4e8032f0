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

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	authMiddleware    *middlewares.AuthMiddleware
	tenantMiddleware  *middlewares.TenantMiddleware
}

func NewSubmissionHandler(submissionService *services.SubmissionService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *SubmissionHandler) RegisterRoutes(router fiber.Router) {
	submissionGroup := router.Group("/submissions", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount)

	submissionGroup.Get("/me", h.GetMySubmissions)
	submissionGroup.Get("/pending", h.authMiddleware.RequireStaff, h.GetPendingSubmissions)
	submissionGroup.Get("/:id", h.GetSubmission)
	submissionGroup.Post("/:id/approve", h.authMiddleware.RequireStaff, h.ApproveSubmission)
	submissionGroup.Post("/:id/reject", h.authMiddleware.RequireStaff, h.RejectSubmission)
}

func (h *SubmissionHandler) GetMySubmissions(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	limit, offset := parseLimitOffset(c)

	submissions, err := h.submissionService.GetSubmissionsByAccount(schoolID, account.ID, limit, offset)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, submissions)
}

func (h *SubmissionHandler) GetPendingSubmissions(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	limit, offset := parseLimitOffset(c)

	submissions, err := h.submissionService.GetPendingSubmissions(schoolID, limit, offset)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, submissions)
}

func (h *SubmissionHandler) GetSubmission(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid submission id"))
	}

	submission, err := h.submissionService.GetSubmission(schoolID, submissionID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	// Students can only see their own submissions.
	if account.Role == models.AccountRoleStudent && submission.AccountID != account.ID {
		return pkg.ErrorResponse(c, errors.NewForbiddenError())
	}

	return pkg.SuccessResponse(c, submission)
}

func (h *SubmissionHandler) ApproveSubmission(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid submission id"))
	}

	submission, err := h.submissionService.Approve(schoolID, submissionID, &account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, submission)
}

func (h *SubmissionHandler) RejectSubmission(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	submissionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid submission id"))
	}

	var req models.SubmissionRejectRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	submission, err := h.submissionService.Reject(schoolID, submissionID, account.ID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, submission)
}
