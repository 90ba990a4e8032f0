package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusCreated      OrderStatus = "CREATED"
	OrderStatusPendingClaim OrderStatus = "PENDING_CLAIM"
	OrderStatusClaimed      OrderStatus = "CLAIMED"
	OrderStatusCancelled    OrderStatus = "CANCELLED"
)

// orderTransitions is the allowed-transition table. CLAIMED and CANCELLED are
// terminal; cancellation is reachable only before a claim.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusCreated:      {OrderStatusPendingClaim, OrderStatusCancelled},
	OrderStatusPendingClaim: {OrderStatusClaimed, OrderStatusCancelled},
	OrderStatusClaimed:      {},
	OrderStatusCancelled:    {},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CancellableStatuses lists the states a cancel is allowed from, for use in
// guarded status-flip queries.
func CancellableStatuses() []OrderStatus {
	return []OrderStatus{OrderStatusCreated, OrderStatusPendingClaim}
}

// Order records a purchase or reward redemption. PointsSpent is the price
// snapshot taken when the order was placed; later catalog price changes never
// touch it. Orders are history: they transition, they are never deleted.
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID    uuid.UUID   `gorm:"type:uuid;not null;index" json:"school_id"`
	AccountID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"account_id"`
	ItemID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"item_id"`
	Quantity    int         `gorm:"not null" json:"quantity"`
	PointsSpent int64       `gorm:"not null" json:"points_spent"`
	Status      OrderStatus `gorm:"type:varchar(15);not null" json:"status"`
	ClaimCode   string      `gorm:"type:varchar(12);not null" json:"claim_code"`
	ClaimedAt   *time.Time  `json:"claimed_at,omitempty"`
	ClaimedBy   *uuid.UUID  `gorm:"type:uuid" json:"claimed_by,omitempty"`
	CancelledAt *time.Time  `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	Item        Item        `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderCreateRequest struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

// OrderStatusHistory tracks every order transition for reconciliation.
type OrderStatusHistory struct {
	ID         uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"order_id"`
	FromStatus *OrderStatus `gorm:"type:varchar(15)" json:"from_status,omitempty"`
	ToStatus   OrderStatus  `gorm:"type:varchar(15);not null" json:"to_status"`
	Reason     *string      `gorm:"type:text" json:"reason,omitempty"`
	CreatedBy  *uuid.UUID   `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (h *OrderStatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
