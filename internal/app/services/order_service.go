package services

import (
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/app/pkg"
	"github.com/questforge/points-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const claimCodeLength = 8

// OrderService drives both debit flows: product purchases and reward
// redemptions. Stock decrement, balance debit and order creation happen in
// one failure-atomic unit, so a failed debit never consumes stock.
type OrderService struct {
	db           *gorm.DB
	validator    *infrastructures.Validator
	ledger       *LedgerService
	itemService  *ItemService
	badgeService *BadgeService
	auditService *AuditService
}

func NewOrderService(db *gorm.DB, validator *infrastructures.Validator, ledger *LedgerService, itemService *ItemService, badgeService *BadgeService, auditService *AuditService) *OrderService {
	return &OrderService{
		db:           db,
		validator:    validator,
		ledger:       ledger,
		itemService:  itemService,
		badgeService: badgeService,
		auditService: auditService,
	}
}

// Purchase places an order for quantity units of an item at the current
// price. Product orders start in CREATED and are marked ready by staff;
// reward redemptions are claimable immediately.
func (s *OrderService) Purchase(schoolID, accountID, itemID uuid.UUID, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, errors.NewBadRequestError("Quantity must be at least 1")
	}

	item, err := s.itemService.GetItem(schoolID, itemID)
	if err != nil {
		return nil, err
	}

	if !item.IsActive {
		return nil, errors.NewUnprocessableError(errors.ErrCodeItemInactive, "Item is not available")
	}

	pointsSpent := int64(quantity) * item.PricePoints

	status := models.OrderStatusCreated
	if item.Kind == models.ItemKindReward {
		status = models.OrderStatusPendingClaim
	}

	var order *models.Order
	err = s.ledger.Run(func(tx *gorm.DB) error {
		// The debit comes first: its row lock on the account serializes
		// concurrent purchases, so the quota count below cannot race.
		if _, err := s.ledger.Debit(tx, schoolID, accountID, pointsSpent, &accountID, "order placed"); err != nil {
			return err
		}

		if item.MaxPerAccount != nil {
			var taken int64
			err := tx.Model(&models.Order{}).
				Where("account_id = ? AND item_id = ? AND status != ?", accountID, itemID, models.OrderStatusCancelled).
				Select("COALESCE(SUM(quantity), 0)").
				Scan(&taken).Error
			if err != nil {
				return errors.NewInternalServerError(err, "Failed to count prior orders")
			}
			if taken+int64(quantity) > int64(*item.MaxPerAccount) {
				return errors.NewUnprocessableError(errors.ErrCodeQuotaExceeded, "Per-account purchase limit reached")
			}
		}

		if _, err := s.ledger.AdjustStock(tx, schoolID, itemID, -int64(quantity), &accountID, "order placed"); err != nil {
			return err
		}

		order = &models.Order{
			SchoolID:    schoolID,
			AccountID:   accountID,
			ItemID:      itemID,
			Quantity:    quantity,
			PointsSpent: pointsSpent,
			Status:      status,
			ClaimCode:   pkg.RandomString(claimCodeLength),
		}
		if err := tx.Create(order).Error; err != nil {
			return errors.NewInternalServerError(err, "Failed to create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logStatusChange(s.db, order.ID, nil, order.Status, "order placed", &accountID)

	if err := s.badgeService.Evaluate(schoolID, accountID); err != nil {
		logrus.Warnf("badge evaluation failed for account %s: %v", accountID, err)
	}

	return order, nil
}

// Cancel refunds the points snapshot and restores stock, exactly once. The
// guarded status flip makes a second cancel fail with no ledger effect.
func (s *OrderService) Cancel(schoolID, orderID uuid.UUID, actorID *uuid.UUID) (*models.Order, error) {
	var order models.Order

	err := s.ledger.Run(func(tx *gorm.DB) error {
		if err := tx.Where("school_id = ? AND id = ?", schoolID, orderID).First(&order).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return errors.NewNotFoundError("Order not found")
			}
			return errors.NewInternalServerError(err, "Failed to get order")
		}

		now := time.Now()
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, models.CancellableStatuses()).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusCancelled,
				"cancelled_at": now,
			})
		if result.Error != nil {
			return errors.NewInternalServerError(result.Error, "Failed to cancel order")
		}
		if result.RowsAffected == 0 {
			return errors.NewConflictError(errors.ErrCodeInvalidTransition, "Order can no longer be cancelled")
		}

		if _, err := s.ledger.Refund(tx, schoolID, order.AccountID, order.PointsSpent, actorID, "order cancelled"); err != nil {
			return err
		}
		if _, err := s.ledger.AdjustStock(tx, schoolID, order.ItemID, int64(order.Quantity), actorID, "order cancelled"); err != nil {
			return err
		}

		fromStatus := order.Status
		order.Status = models.OrderStatusCancelled
		order.CancelledAt = &now
		s.logStatusChange(tx, order.ID, &fromStatus, models.OrderStatusCancelled, "order cancelled", actorID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// MarkReady moves a prepared product order to the claim counter.
func (s *OrderService) MarkReady(schoolID, orderID uuid.UUID, actorID uuid.UUID) (*models.Order, error) {
	return s.flipStatus(schoolID, orderID, models.OrderStatusCreated, models.OrderStatusPendingClaim, "order ready for claim", &actorID, nil)
}

// Claim completes a PENDING_CLAIM order. Funds were captured at purchase
// time, so claiming has no ledger effect.
func (s *OrderService) Claim(schoolID, orderID uuid.UUID, claimantID uuid.UUID) (*models.Order, error) {
	now := time.Now()
	extra := map[string]interface{}{
		"claimed_at": now,
		"claimed_by": claimantID,
	}
	return s.flipStatus(schoolID, orderID, models.OrderStatusPendingClaim, models.OrderStatusClaimed, "order claimed", &claimantID, extra)
}

func (s *OrderService) flipStatus(schoolID, orderID uuid.UUID, from, to models.OrderStatus, reason string, actorID *uuid.UUID, extra map[string]interface{}) (*models.Order, error) {
	var order models.Order
	if err := s.db.Where("school_id = ? AND id = ?", schoolID, orderID).First(&order).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Order not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get order")
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	result := s.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(updates)
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to update order status")
	}
	if result.RowsAffected == 0 {
		return nil, errors.NewConflictError(errors.ErrCodeInvalidTransition, "Order is not in a state that allows this transition")
	}

	s.logStatusChange(s.db, orderID, &from, to, reason, actorID)

	if err := s.db.Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to reload order")
	}

	return &order, nil
}

func (s *OrderService) GetOrder(schoolID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Where("school_id = ? AND id = ?", schoolID, orderID).Preload("Item").First(&order).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Order not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get order")
	}

	return &order, nil
}

func (s *OrderService) GetOrdersByAccount(schoolID, accountID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := s.db.Where("school_id = ? AND account_id = ?", schoolID, accountID).
		Preload("Item").
		Order("created_at DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&orders).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get orders")
	}

	return orders, nil
}

// ExpireStale cancels orders that sat unclaimed past the TTL, refunding
// points and restoring stock through the normal cancellation path. Called
// from the maintenance scheduler.
func (s *OrderService) ExpireStale(olderThan time.Time) (int, error) {
	var stale []models.Order
	err := s.db.Where("status IN ? AND created_at <= ?", models.CancellableStatuses(), olderThan).Find(&stale).Error
	if err != nil {
		return 0, errors.NewInternalServerError(err, "Failed to list stale orders")
	}

	expired := 0
	for _, order := range stale {
		if _, err := s.Cancel(order.SchoolID, order.ID, nil); err != nil {
			// A concurrent claim is fine, anything else is worth surfacing.
			if !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
				logrus.Warnf("failed to expire order %s: %v", order.ID, err)
			}
			continue
		}
		expired++
	}

	return expired, nil
}

func (s *OrderService) logStatusChange(db *gorm.DB, orderID uuid.UUID, from *models.OrderStatus, to models.OrderStatus, reason string, actorID *uuid.UUID) {
	if err := s.auditService.LogOrderStatusChange(db, orderID, from, to, reason, actorID); err != nil {
		logrus.Warnf("failed to record order status change for %s: %v", orderID, err)
	}
}
