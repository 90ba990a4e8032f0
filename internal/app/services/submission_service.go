package services

import (
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type SubmissionService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	ledger       *LedgerService
	questService *QuestService
	badgeService *BadgeService
}

func NewSubmissionService(db *gorm.DB, validator *infrastructures.Validator, ledger *LedgerService, questService *QuestService, badgeService *BadgeService) *SubmissionService {
	return &SubmissionService{
		db:           db,
		validator:    validator,
		ledger:       ledger,
		questService: questService,
		badgeService: badgeService,
	}
}

// Submit creates a PENDING submission carrying a snapshot of the quest's
// award. At most one non-rejected submission may exist per (account, quest);
// whether a rejected one may be retried is a deployment policy. A concurrent
// double-submit loses on the (quest, account, attempt) unique index.
func (s *SubmissionService) Submit(schoolID, accountID, questID uuid.UUID, req *models.SubmissionCreateRequest) (*models.QuestSubmission, error) {
	if req != nil {
		if err := s.validator.Validate(req); err != nil {
			return nil, err
		}
	}

	quest, err := s.questService.GetQuest(schoolID, questID)
	if err != nil {
		return nil, err
	}

	if !quest.IsActive {
		return nil, errors.NewBadRequestError("Quest is not active")
	}
	if quest.Deadline != nil && time.Now().After(*quest.Deadline) {
		return nil, errors.NewBadRequestError("Quest deadline has passed")
	}

	var prior []models.QuestSubmission
	if err := s.db.Where("quest_id = ? AND account_id = ?", questID, accountID).Find(&prior).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to check existing submissions")
	}

	for _, p := range prior {
		if p.Status != models.SubmissionStatusRejected {
			return nil, errors.NewConflictError(errors.ErrCodeDuplicateSubmission, "Quest already submitted")
		}
	}
	if len(prior) > 0 && !infrastructures.Config.ALLOW_RESUBMIT_AFTER_REJECT {
		return nil, errors.NewConflictError(errors.ErrCodeDuplicateSubmission, "Quest submission was rejected and resubmission is disabled")
	}

	submission := &models.QuestSubmission{
		SchoolID:    schoolID,
		QuestID:     questID,
		AccountID:   accountID,
		Attempt:     len(prior) + 1,
		Status:      models.SubmissionStatusPending,
		PointsAward: quest.PointsAward,
	}
	if req != nil {
		submission.Note = req.Note
	}

	if err := s.db.Create(submission).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewConflictError(errors.ErrCodeDuplicateSubmission, "Quest already submitted")
		}
		return nil, errors.NewInternalServerError(err, "Failed to create submission")
	}

	if quest.ValidationType == models.QuestValidationAuto {
		return s.Approve(schoolID, submission.ID, nil)
	}

	return submission, nil
}

// Approve flips PENDING to APPROVED and credits the award snapshot in one
// transaction. If the credit fails the flip rolls back and the submission
// stays PENDING. approverID is nil for auto-validated quests.
func (s *SubmissionService) Approve(schoolID, submissionID uuid.UUID, approverID *uuid.UUID) (*models.QuestSubmission, error) {
	var submission models.QuestSubmission

	err := s.ledger.Run(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ? AND id = ?", schoolID, submissionID).First(&submission).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NewNotFoundError("Submission not found")
			}
			return errors.NewInternalServerError(err, "Failed to get submission")
		}

		now := time.Now()
		result := tx.Model(&models.QuestSubmission{}).
			Where("id = ? AND status = ?", submissionID, models.SubmissionStatusPending).
			Updates(map[string]interface{}{
				"status":     models.SubmissionStatusApproved,
				"decided_at": now,
				"decided_by": approverID,
			})
		if result.Error != nil {
			return errors.NewInternalServerError(result.Error, "Failed to approve submission")
		}
		if result.RowsAffected == 0 {
			return errors.NewConflictError(errors.ErrCodeInvalidTransition, "Submission is not pending")
		}

		if _, err := s.ledger.Credit(tx, schoolID, submission.AccountID, submission.PointsAward, approverID, "quest approved"); err != nil {
			return err
		}

		submission.Status = models.SubmissionStatusApproved
		submission.DecidedAt = &now
		submission.DecidedBy = approverID
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Grants are idempotent, so a failed evaluation here is retried on the
	// next trigger rather than undoing the approval.
	if err := s.badgeService.Evaluate(schoolID, submission.AccountID); err != nil {
		logrus.Warnf("badge evaluation failed for account %s: %v", submission.AccountID, err)
	}

	return &submission, nil
}

// Reject flips PENDING to REJECTED with reviewer feedback. No ledger effect.
func (s *SubmissionService) Reject(schoolID, submissionID, reviewerID uuid.UUID, req *models.SubmissionRejectRequest) (*models.QuestSubmission, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var submission models.QuestSubmission
	if err := s.db.Where("school_id = ? AND id = ?", schoolID, submissionID).First(&submission).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Submission not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get submission")
	}

	now := time.Now()
	result := s.db.Model(&models.QuestSubmission{}).
		Where("id = ? AND status = ?", submissionID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":     models.SubmissionStatusRejected,
			"decided_at": now,
			"decided_by": reviewerID,
			"feedback":   req.Feedback,
		})
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to reject submission")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError(errors.ErrCodeInvalidTransition, "Submission is not pending")
	}

	submission.Status = models.SubmissionStatusRejected
	submission.DecidedAt = &now
	submission.DecidedBy = &reviewerID
	submission.Feedback = &req.Feedback
	return &submission, nil
}

func (s *SubmissionService) GetSubmission(schoolID, submissionID uuid.UUID) (*models.QuestSubmission, error) {
	var submission models.QuestSubmission
	err := s.db.Where("school_id = ? AND id = ?", schoolID, submissionID).First(&submission).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Submission not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get submission")
	}

	return &submission, nil
}

func (s *SubmissionService) GetSubmissionsByAccount(schoolID, accountID uuid.UUID, limit, offset int) ([]models.QuestSubmission, error) {
	var submissions []models.QuestSubmission
	query := s.db.Where("school_id = ? AND account_id = ?", schoolID, accountID).Order("submitted_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get submissions")
	}

	return submissions, nil
}

// GetPendingSubmissions is the reviewer queue, oldest first.
func (s *SubmissionService) GetPendingSubmissions(schoolID uuid.UUID, limit, offset int) ([]models.QuestSubmission, error) {
	var submissions []models.QuestSubmission
	query := s.db.Where("school_id = ? AND status = ?", schoolID, models.SubmissionStatusPending).Order("submitted_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&submissions).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get submissions")
	}

	return submissions, nil
}
