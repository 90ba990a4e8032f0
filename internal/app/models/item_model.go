package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ItemKind string

const (
	ItemKindProduct ItemKind = "PRODUCT"
	ItemKindReward  ItemKind = "REWARD"
)

// Item is a redeemable catalog entry. Stock is nullable: NULL means
// unlimited supply. The stock counter is written only by the ledger service,
// never by catalog updates.
type Item struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"school_id"`
	Kind          ItemKind       `gorm:"type:varchar(10);not null" json:"kind"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	Slug          string         `gorm:"type:varchar(255);not null;index" json:"slug"`
	Description   *string        `gorm:"type:text" json:"description,omitempty"`
	PricePoints   int64          `gorm:"not null" json:"price_points"`
	Stock         *int64         `json:"stock,omitempty"`
	MaxPerAccount *int           `json:"max_per_account,omitempty"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedBy     *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type ItemCreateRequest struct {
	Kind          ItemKind `json:"kind" validate:"required,oneof=PRODUCT REWARD"`
	Name          string   `json:"name" validate:"required,max=255"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePoints   int64    `json:"price_points" validate:"required,gt=0"`
	Stock         *int64   `json:"stock,omitempty" validate:"omitempty,min=0"`
	MaxPerAccount *int     `json:"max_per_account,omitempty" validate:"omitempty,min=1"`
}

// Stock is deliberately absent: restocking goes through the ledger so that
// every supply change leaves an audit entry.
type ItemUpdateRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Description   *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PricePoints   *int64  `json:"price_points,omitempty" validate:"omitempty,gt=0"`
	MaxPerAccount *int    `json:"max_per_account,omitempty" validate:"omitempty,min=1"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

type ItemRestockRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}
