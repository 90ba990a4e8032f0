package services

import (
	goerrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ledgerMaxRetries     = 3
	ledgerInitialBackoff = 50 * time.Millisecond
)

// LedgerService is the only writer of account balances, item stock counters
// and badge grants. All four primitives run inside a caller-supplied
// transaction so workflows can compose them into one failure-atomic unit.
// Serialization per key rides on the row locks the guarded UPDATEs take.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Run executes fn inside a database transaction, retrying transient store
// failures a bounded number of times with backoff. Business failures are
// terminal and surface immediately.
func (s *LedgerService) Run(fn func(tx *gorm.DB) error) error {
	backoff := ledgerInitialBackoff

	var err error
	for attempt := 0; attempt <= ledgerMaxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		err = s.db.Transaction(fn)
		if err == nil || !isTransient(err) {
			return err
		}
	}

	return errors.NewStoreUnavailableError(err, "Store unavailable, retries exhausted")
}

// isTransient treats anything that is not a known business or lookup failure
// as retryable infrastructure trouble.
func isTransient(err error) bool {
	var appErr *errors.AppError
	if goerrors.As(err, &appErr) {
		return false
	}
	if goerrors.Is(err, gorm.ErrRecordNotFound) || goerrors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	return true
}

// Credit adds an earned amount to the account's point balance and
// experience, then recomputes the level from the new experience total.
func (s *LedgerService) Credit(tx *gorm.DB, schoolID, accountID uuid.UUID, amount int64, actor *uuid.UUID, reason string) (int64, error) {
	return s.creditBalance(tx, schoolID, accountID, amount, actor, reason, true)
}

// Refund restores points without granting experience. Refunds are
// progression-neutral: a purchase that is later cancelled leaves experience
// and level exactly where they were.
func (s *LedgerService) Refund(tx *gorm.DB, schoolID, accountID uuid.UUID, amount int64, actor *uuid.UUID, reason string) (int64, error) {
	return s.creditBalance(tx, schoolID, accountID, amount, actor, reason, false)
}

func (s *LedgerService) creditBalance(tx *gorm.DB, schoolID, accountID uuid.UUID, amount int64, actor *uuid.UUID, reason string, earned bool) (int64, error) {
	if amount <= 0 {
		return 0, errors.NewBadRequestError("Credit amount must be positive")
	}

	updates := map[string]interface{}{
		"point_balance": gorm.Expr("point_balance + ?", amount),
	}
	if earned {
		updates["experience"] = gorm.Expr("experience + ?", amount)
	}

	result := tx.Model(&models.Account{}).
		Where("school_id = ? AND id = ?", schoolID, accountID).
		Updates(updates)
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to credit account")
	}
	if result.RowsAffected == 0 {
		return 0, errors.NewNotFoundError("Account not found")
	}

	account, err := s.reloadAccount(tx, schoolID, accountID)
	if err != nil {
		return 0, err
	}

	if earned {
		if level := models.LevelForExperience(account.Experience); level != account.Level {
			if err := tx.Model(&models.Account{}).Where("id = ?", account.ID).Update("level", level).Error; err != nil {
				return 0, errors.NewInternalServerError(err, "Failed to update account level")
			}
		}
	}

	before := account.PointBalance - amount
	if err := s.writeAudit(tx, schoolID, models.LedgerEntityAccount, accountID, actor, amount, &before, &account.PointBalance, reason); err != nil {
		return 0, err
	}

	return account.PointBalance, nil
}

// Debit subtracts amount from the account's point balance. The balance guard
// is part of the UPDATE itself, so two concurrent debits can never jointly
// overdraw the account.
func (s *LedgerService) Debit(tx *gorm.DB, schoolID, accountID uuid.UUID, amount int64, actor *uuid.UUID, reason string) (int64, error) {
	if amount <= 0 {
		return 0, errors.NewBadRequestError("Debit amount must be positive")
	}

	result := tx.Model(&models.Account{}).
		Where("school_id = ? AND id = ? AND point_balance >= ?", schoolID, accountID, amount).
		Update("point_balance", gorm.Expr("point_balance - ?", amount))
	if result.Error != nil {
		return 0, errors.NewInternalServerError(result.Error, "Failed to debit account")
	}
	if result.RowsAffected == 0 {
		if _, err := s.reloadAccount(tx, schoolID, accountID); err != nil {
			return 0, err
		}
		return 0, errors.NewUnprocessableError(errors.ErrCodeInsufficientFunds, "Insufficient point balance")
	}

	account, err := s.reloadAccount(tx, schoolID, accountID)
	if err != nil {
		return 0, err
	}

	before := account.PointBalance + amount
	if err := s.writeAudit(tx, schoolID, models.LedgerEntityAccount, accountID, actor, -amount, &before, &account.PointBalance, reason); err != nil {
		return 0, err
	}

	return account.PointBalance, nil
}

// AdjustStock moves an item's stock counter by delta, negative on purchase
// and positive on restock or cancellation. Items with NULL stock are
// unlimited and pass through unchanged.
func (s *LedgerService) AdjustStock(tx *gorm.DB, schoolID, itemID uuid.UUID, delta int64, actor *uuid.UUID, reason string) (*int64, error) {
	if delta == 0 {
		return nil, errors.NewBadRequestError("Stock delta must be non-zero")
	}

	result := tx.Model(&models.Item{}).
		Where("school_id = ? AND id = ?", schoolID, itemID).
		Where("stock IS NULL OR stock + ? >= 0", delta).
		Update("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return nil, errors.NewInternalServerError(result.Error, "Failed to adjust item stock")
	}
	if result.RowsAffected == 0 {
		var item models.Item
		if err := tx.Where("school_id = ? AND id = ?", schoolID, itemID).First(&item).Error; err != nil {
			if goerrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errors.NewNotFoundError("Item not found")
			}
			return nil, errors.NewInternalServerError(err, "Failed to get item")
		}
		return nil, errors.NewUnprocessableError(errors.ErrCodeInsufficientStock, "Insufficient item stock")
	}

	var item models.Item
	if err := tx.Where("school_id = ? AND id = ?", schoolID, itemID).First(&item).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get item")
	}

	var before *int64
	if item.Stock != nil {
		b := *item.Stock - delta
		before = &b
	}
	if err := s.writeAudit(tx, schoolID, models.LedgerEntityItem, itemID, actor, delta, before, item.Stock, reason); err != nil {
		return nil, err
	}

	return item.Stock, nil
}

// GrantBadgeOnce inserts a badge grant, letting the (account, badge)
// uniqueness swallow duplicates. A repeat call reports granted=false with no
// side effects and no error, which makes badge evaluation safe to re-run.
func (s *LedgerService) GrantBadgeOnce(tx *gorm.DB, schoolID, accountID, badgeID uuid.UUID) (bool, error) {
	grant := &models.AccountBadge{
		SchoolID:  schoolID,
		AccountID: accountID,
		BadgeID:   badgeID,
	}

	result := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(grant)
	if result.Error != nil {
		return false, errors.NewInternalServerError(result.Error, "Failed to grant badge")
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	if err := s.writeAudit(tx, schoolID, models.LedgerEntityBadgeGrant, badgeID, &accountID, 1, nil, nil, "badge granted"); err != nil {
		return false, err
	}

	return true, nil
}

func (s *LedgerService) reloadAccount(tx *gorm.DB, schoolID, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := tx.Where("school_id = ? AND id = ?", schoolID, accountID).First(&account).Error; err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Account not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get account")
	}
	return &account, nil
}

func (s *LedgerService) writeAudit(tx *gorm.DB, schoolID uuid.UUID, entityType models.LedgerEntityType, entityID uuid.UUID, actor *uuid.UUID, delta int64, before, after *int64, reason string) error {
	entry := &models.LedgerAudit{
		SchoolID:   schoolID,
		EntityType: entityType,
		EntityID:   entityID,
		Actor:      actor,
		Delta:      delta,
		Before:     before,
		After:      after,
		Reason:     reason,
	}
	if err := tx.Create(entry).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to write ledger audit entry")
	}
	return nil
}
