package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestValidationType string

const (
	QuestValidationManual QuestValidationType = "MANUAL"
	QuestValidationAuto   QuestValidationType = "AUTO"
)

type Quest struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"school_id"`
	Title          string              `gorm:"type:varchar(255);not null" json:"title"`
	Slug           string              `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description    *string             `gorm:"type:text" json:"description,omitempty"`
	PointsAward    int64               `gorm:"not null" json:"points_award"`
	ValidationType QuestValidationType `gorm:"type:varchar(10);not null;default:'MANUAL'" json:"validation_type"`
	Deadline       *time.Time          `json:"deadline,omitempty"`
	IsActive       bool                `gorm:"not null;default:true" json:"is_active"`
	CreatedBy      *uuid.UUID          `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"deleted_at"`
}

func (q *Quest) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuestCreateRequest struct {
	Title          string               `json:"title" validate:"required,max=255"`
	Description    *string              `json:"description,omitempty" validate:"omitempty,max=2000"`
	PointsAward    int64                `json:"points_award" validate:"required,gt=0"`
	ValidationType *QuestValidationType `json:"validation_type,omitempty" validate:"omitempty,oneof=MANUAL AUTO"`
	Deadline       *time.Time           `json:"deadline,omitempty"`
}

// PointsAward is deliberately absent: the award is fixed at creation and
// submissions carry their own snapshot of it.
type QuestUpdateRequest struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
}
