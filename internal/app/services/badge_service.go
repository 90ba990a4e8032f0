package services

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"gorm.io/gorm"
)

type BadgeService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
	ledger    *LedgerService
}

func NewBadgeService(db *gorm.DB, validator *infrastructures.Validator, ledger *LedgerService) *BadgeService {
	return &BadgeService{
		db:        db,
		validator: validator,
		ledger:    ledger,
	}
}

// Evaluate grants every active badge whose thresholds the account now meets.
// It is re-entrant: there is no local locking, concurrent runs converge on at
// most one grant per badge because the store rejects the second insert.
func (s *BadgeService) Evaluate(schoolID, accountID uuid.UUID) error {
	var account models.Account
	if err := s.db.Where("school_id = ? AND id = ?", schoolID, accountID).First(&account).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NewNotFoundError("Account not found")
		}
		return errors.NewInternalServerError(err, "Failed to get account")
	}

	var approvedQuests int64
	err := s.db.Model(&models.QuestSubmission{}).
		Where("school_id = ? AND account_id = ? AND status = ?", schoolID, accountID, models.SubmissionStatusApproved).
		Count(&approvedQuests).Error
	if err != nil {
		return errors.NewInternalServerError(err, "Failed to count approved submissions")
	}

	var badges []models.Badge
	if err := s.db.Where("school_id = ? AND is_active = ?", schoolID, true).Find(&badges).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to get badges")
	}

	return s.ledger.Run(func(tx *gorm.DB) error {
		for _, badge := range badges {
			if !meetsRequirements(&account, approvedQuests, &badge) {
				continue
			}
			if _, err := s.ledger.GrantBadgeOnce(tx, schoolID, accountID, badge.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// meetsRequirements checks every threshold the badge carries; absent
// thresholds are ignored.
func meetsRequirements(account *models.Account, approvedQuests int64, badge *models.Badge) bool {
	if badge.RequiredLevel != nil && account.Level < *badge.RequiredLevel {
		return false
	}
	if badge.RequiredQuests != nil && approvedQuests < int64(*badge.RequiredQuests) {
		return false
	}
	if badge.RequiredPoints != nil && account.PointBalance < *badge.RequiredPoints {
		return false
	}
	return true
}

func (s *BadgeService) CreateBadge(schoolID uuid.UUID, req *models.BadgeCreateRequest) (*models.Badge, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	badge := &models.Badge{
		SchoolID:       schoolID,
		Name:           req.Name,
		Slug:           slug.Make(req.Name),
		Description:    req.Description,
		RequiredLevel:  req.RequiredLevel,
		RequiredQuests: req.RequiredQuests,
		RequiredPoints: req.RequiredPoints,
		IsActive:       true,
	}

	if err := s.db.Create(badge).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create badge")
	}

	return badge, nil
}

func (s *BadgeService) GetBadge(schoolID, badgeID uuid.UUID) (*models.Badge, error) {
	var badge models.Badge
	err := s.db.Where("school_id = ? AND id = ?", schoolID, badgeID).First(&badge).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Badge not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get badge")
	}

	return &badge, nil
}

func (s *BadgeService) GetBadges(schoolID uuid.UUID, activeOnly bool) ([]models.Badge, error) {
	query := s.db.Where("school_id = ?", schoolID).Order("created_at ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var badges []models.Badge
	if err := query.Find(&badges).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get badges")
	}

	return badges, nil
}

func (s *BadgeService) UpdateBadge(schoolID, badgeID uuid.UUID, req *models.BadgeUpdateRequest) (*models.Badge, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	badge, err := s.GetBadge(schoolID, badgeID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		badge.Name = *req.Name
		badge.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		badge.Description = req.Description
	}
	if req.RequiredLevel != nil {
		badge.RequiredLevel = req.RequiredLevel
	}
	if req.RequiredQuests != nil {
		badge.RequiredQuests = req.RequiredQuests
	}
	if req.RequiredPoints != nil {
		badge.RequiredPoints = req.RequiredPoints
	}
	if req.IsActive != nil {
		badge.IsActive = *req.IsActive
	}

	if err := s.db.Save(badge).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update badge")
	}

	return badge, nil
}

// GetAccountBadges returns the grants an account holds, badge preloaded.
func (s *BadgeService) GetAccountBadges(schoolID, accountID uuid.UUID) ([]models.AccountBadge, error) {
	var grants []models.AccountBadge
	err := s.db.Where("school_id = ? AND account_id = ?", schoolID, accountID).
		Preload("Badge").
		Order("earned_at DESC").
		Find(&grants).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get account badges")
	}

	return grants, nil
}
