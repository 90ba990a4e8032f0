package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Badge thresholds are optional; any subset may be set. Absent thresholds are
// ignored, present ones must all hold. Predicates are monotone in account
// stats, so a badge once satisfied stays satisfied.
type Badge struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	Name           string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string         `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description    *string        `gorm:"type:text" json:"description,omitempty"`
	RequiredLevel  *int           `json:"required_level,omitempty"`
	RequiredQuests *int           `json:"required_quests,omitempty"`
	RequiredPoints *int64         `json:"required_points,omitempty"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (b *Badge) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// AccountBadge is a grant. The (account, badge) uniqueness is what makes
// badge evaluation safe to re-run: the store rejects a second insert instead
// of the evaluators coordinating.
type AccountBadge struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID  uuid.UUID `gorm:"type:uuid;not null;index" json:"school_id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_account_badges_account_badge" json:"account_id"`
	BadgeID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_account_badges_account_badge" json:"badge_id"`
	EarnedAt  time.Time `gorm:"not null;autoCreateTime" json:"earned_at"`
	Badge     Badge     `json:"badge,omitempty" gorm:"foreignKey:BadgeID"`
}

func (ab *AccountBadge) BeforeCreate(tx *gorm.DB) error {
	if ab.ID == uuid.Nil {
		ab.ID = uuid.New()
	}
	return nil
}

type BadgeCreateRequest struct {
	Name           string  `json:"name" validate:"required,max=255"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	RequiredLevel  *int    `json:"required_level,omitempty" validate:"omitempty,min=1"`
	RequiredQuests *int    `json:"required_quests,omitempty" validate:"omitempty,min=1"`
	RequiredPoints *int64  `json:"required_points,omitempty" validate:"omitempty,min=1"`
}

type BadgeUpdateRequest struct {
	Name           *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	RequiredLevel  *int    `json:"required_level,omitempty" validate:"omitempty,min=1"`
	RequiredQuests *int    `json:"required_quests,omitempty" validate:"omitempty,min=1"`
	RequiredPoints *int64  `json:"required_points,omitempty" validate:"omitempty,min=1"`
	IsActive       *bool   `json:"is_active,omitempty"`
}
