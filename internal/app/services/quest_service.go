package services

import (
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"gorm.io/gorm"
)

type QuestService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewQuestService(db *gorm.DB, validator *infrastructures.Validator) *QuestService {
	return &QuestService{
		db:        db,
		validator: validator,
	}
}

func (s *QuestService) CreateQuest(schoolID uuid.UUID, req *models.QuestCreateRequest, createdBy *uuid.UUID) (*models.Quest, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	validationType := models.QuestValidationManual
	if req.ValidationType != nil {
		validationType = *req.ValidationType
	}

	quest := &models.Quest{
		SchoolID:       schoolID,
		Title:          req.Title,
		Slug:           slug.Make(req.Title),
		Description:    req.Description,
		PointsAward:    req.PointsAward,
		ValidationType: validationType,
		Deadline:       req.Deadline,
		IsActive:       true,
		CreatedBy:      createdBy,
	}

	if err := s.db.Create(quest).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create quest")
	}

	return quest, nil
}

func (s *QuestService) GetQuest(schoolID, questID uuid.UUID) (*models.Quest, error) {
	var quest models.Quest
	err := s.db.Where("school_id = ? AND id = ?", schoolID, questID).First(&quest).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Quest not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get quest")
	}

	return &quest, nil
}

func (s *QuestService) GetQuests(schoolID uuid.UUID, pagination *models.PaginationRequest, activeOnly bool) (*models.Pagination[[]models.Quest], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	countQuery := s.db.Model(&models.Quest{}).Where("school_id = ?", schoolID)
	if activeOnly {
		countQuery = countQuery.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count quests")
	}

	query := s.db.Where("school_id = ?", schoolID).Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var quests []models.Quest
	if err := query.Limit(pagination.Limit).Offset(offset).Find(&quests).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get quests")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Quest]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      quests,
	}, nil
}

// UpdateQuest changes quest metadata. PointsAward is immutable after
// creation; submissions snapshot it anyway.
func (s *QuestService) UpdateQuest(schoolID, questID uuid.UUID, req *models.QuestUpdateRequest) (*models.Quest, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	quest, err := s.GetQuest(schoolID, questID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quest.Title = *req.Title
		quest.Slug = slug.Make(*req.Title)
	}
	if req.Description != nil {
		quest.Description = req.Description
	}
	if req.Deadline != nil {
		quest.Deadline = req.Deadline
	}
	if req.IsActive != nil {
		quest.IsActive = *req.IsActive
	}

	if err := s.db.Save(quest).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update quest")
	}

	return quest, nil
}

func (s *QuestService) DeleteQuest(schoolID, questID uuid.UUID) error {
	quest, err := s.GetQuest(schoolID, questID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(quest).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete quest")
	}

	return nil
}

// DeactivateExpired flips quests whose deadline has passed to inactive.
// Called from the maintenance scheduler.
func (s *QuestService) DeactivateExpired(now time.Time) (int64, error) {
	result := s.db.Model(&models.Quest{}).
		Where("is_active = ? AND deadline IS NOT NULL AND deadline <= ?", true, now).
		Update("is_active", false)
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to deactivate expired quests")
	}

	return result.RowsAffected, nil
}
