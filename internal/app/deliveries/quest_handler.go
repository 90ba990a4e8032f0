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

type QuestHandler struct {
	questService      *services.QuestService
	submissionService *services.SubmissionService
	authMiddleware    *middlewares.AuthMiddleware
	tenantMiddleware  *middlewares.TenantMiddleware
}

func NewQuestHandler(questService *services.QuestService, submissionService *services.SubmissionService, authMiddleware *middlewares.AuthMiddleware, tenantMiddleware *middlewares.TenantMiddleware) *QuestHandler {
	return &QuestHandler{questService: questService, submissionService: submissionService, authMiddleware: authMiddleware, tenantMiddleware: tenantMiddleware}
}

func (h *QuestHandler) RegisterRoutes(router fiber.Router) {
	questGroup := router.Group("/quests", h.tenantMiddleware.RequireSchool, h.authMiddleware.AuthUser, h.authMiddleware.AuthAccount)

	questGroup.Get("/", h.GetQuests)
	questGroup.Get("/:id", h.GetQuest)
	questGroup.Post("/:id/submissions", h.SubmitQuest)
	questGroup.Post("/", h.authMiddleware.RequireStaff, h.CreateQuest)
	questGroup.Patch("/:id", h.authMiddleware.RequireStaff, h.UpdateQuest)
	questGroup.Delete("/:id", h.authMiddleware.RequireStaff, h.DeleteQuest)
}

func (h *QuestHandler) CreateQuest(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	var req models.QuestCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	quest, err := h.questService.CreateQuest(schoolID, &req, &account.ID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, quest)
}

func (h *QuestHandler) GetQuests(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	activeOnly, _ := strconv.ParseBool(c.Query("active_only", "false"))

	quests, err := h.questService.GetQuests(schoolID, parsePagination(c), activeOnly)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, quests)
}

func (h *QuestHandler) GetQuest(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	questID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid quest id"))
	}

	quest, err := h.questService.GetQuest(schoolID, questID)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, quest)
}

func (h *QuestHandler) UpdateQuest(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	questID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid quest id"))
	}

	var req models.QuestUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	quest, err := h.questService.UpdateQuest(schoolID, questID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, quest)
}

func (h *QuestHandler) DeleteQuest(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)

	questID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid quest id"))
	}

	if err := h.questService.DeleteQuest(schoolID, questID); err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse[any](c, nil)
}

func (h *QuestHandler) SubmitQuest(c *fiber.Ctx) error {
	schoolID := c.Locals("school_id").(uuid.UUID)
	account := c.Locals("account").(*models.Account)

	questID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError("Invalid quest id"))
	}

	var req models.SubmissionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return pkg.ErrorResponse(c, errors.NewBadRequestError(err.Error()))
	}

	submission, err := h.submissionService.Submit(schoolID, account.ID, questID, &req)
	if err != nil {
		return pkg.ErrorResponse(c, err)
	}

	return pkg.SuccessResponse(c, submission)
}
