package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LedgerEntityType string

const (
	LedgerEntityAccount    LedgerEntityType = "ACCOUNT"
	LedgerEntityItem       LedgerEntityType = "ITEM"
	LedgerEntityBadgeGrant LedgerEntityType = "BADGE_GRANT"
)

// LedgerAudit is the append-only trail behind every balance, stock and badge
// mutation. Before/After are nil for entities without a counter (badge
// grants) and for unlimited stock.
type LedgerAudit struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"school_id"`
	EntityType LedgerEntityType `gorm:"type:varchar(15);not null" json:"entity_type"`
	EntityID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"entity_id"`
	Actor      *uuid.UUID       `gorm:"type:uuid" json:"actor,omitempty"`
	Delta      int64            `gorm:"not null" json:"delta"`
	Before     *int64           `json:"before,omitempty"`
	After      *int64           `json:"after,omitempty"`
	Reason     string           `gorm:"type:varchar(255);not null" json:"reason"`
	CreatedAt  time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (a *LedgerAudit) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
