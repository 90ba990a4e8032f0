package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// submissionTransitions is the allowed-transition table. Both terminal states
// are one-way: a decided submission is never reopened.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionStatusPending:  {SubmissionStatusApproved, SubmissionStatusRejected},
	SubmissionStatusApproved: {},
	SubmissionStatusRejected: {},
}

func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// QuestSubmission is an append-only record of one attempt at a quest.
// PointsAward is snapshotted at submit time; a later change to the quest
// never changes what an approval credits. The (quest, account, attempt)
// uniqueness is the concurrency guard against double-submits.
type QuestSubmission struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"school_id"`
	QuestID     uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_quest_account_attempt" json:"quest_id"`
	AccountID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_quest_account_attempt;index" json:"account_id"`
	Attempt     int              `gorm:"not null;default:1;uniqueIndex:idx_submissions_quest_account_attempt" json:"attempt"`
	Status      SubmissionStatus `gorm:"type:varchar(10);not null;default:'PENDING'" json:"status"`
	PointsAward int64            `gorm:"not null" json:"points_award"`
	Note        *string          `gorm:"type:text" json:"note,omitempty"`
	Feedback    *string          `gorm:"type:text" json:"feedback,omitempty"`
	SubmittedAt time.Time        `gorm:"autoCreateTime" json:"submitted_at"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty"`
	DecidedBy   *uuid.UUID       `gorm:"type:uuid" json:"decided_by,omitempty"`
}

func (s *QuestSubmission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SubmissionCreateRequest struct {
	Note *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

type SubmissionRejectRequest struct {
	Feedback string `json:"feedback" validate:"required,max=2000"`
}
