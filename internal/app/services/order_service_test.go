package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
)

func TestPurchaseDebitsAndDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)

	order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	if order.Status != models.OrderStatusCreated {
		t.Errorf("expected CREATED for product order, got %s", order.Status)
	}
	if order.PointsSpent != 30 {
		t.Errorf("expected points spent 30, got %d", order.PointsSpent)
	}
	if len(order.ClaimCode) != claimCodeLength {
		t.Errorf("expected claim code of length %d, got %q", claimCodeLength, order.ClaimCode)
	}
	if got := accountBalance(t, env.db, account.ID); got != 70 {
		t.Errorf("expected balance 70, got %d", got)
	}
	if got := itemStock(t, env.db, item.ID); *got != 1 {
		t.Errorf("expected stock 1, got %d", *got)
	}

	history, err := env.audit.GetOrderStatusHistory(order.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 1 || history[0].ToStatus != models.OrderStatusCreated {
		t.Errorf("expected a single CREATED history entry, got %v", history)
	}
}

func TestPurchaseFailedDebitRestoresNothing(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 10)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)

	_, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if !errors.HasCode(err, errors.ErrCodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	// The whole purchase runs in one transaction; a failed debit must leave
	// stock untouched.
	if got := itemStock(t, env.db, item.ID); *got != 2 {
		t.Errorf("failed purchase consumed stock: %d", *got)
	}
	if got := accountBalance(t, env.db, account.ID); got != 10 {
		t.Errorf("failed purchase touched balance: %d", got)
	}

	var count int64
	env.db.Model(&models.Order{}).Where("account_id = ?", account.ID).Count(&count)
	if count != 0 {
		t.Errorf("failed purchase left an order behind")
	}
}

func TestPurchaseInsufficientStock(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(0), nil)

	_, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if !errors.HasCode(err, errors.ErrCodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := accountBalance(t, env.db, account.ID); got != 100 {
		t.Errorf("failed purchase touched balance: %d", got)
	}
}

func TestPurchaseInactiveItem(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)

	env.db.Model(&models.Item{}).Where("id = ?", item.ID).Update("is_active", false)

	_, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if !errors.HasCode(err, errors.ErrCodeItemInactive) {
		t.Fatalf("expected item inactive, got %v", err)
	}
}

func TestPurchaseQuotaExcludesCancelled(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(5), intPtr(1))

	first, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}

	_, err = env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if !errors.HasCode(err, errors.ErrCodeQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	// A cancelled order frees its quota.
	if _, err := env.order.Cancel(schoolID, first.ID, nil); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := env.order.Purchase(schoolID, account.ID, item.ID, 1); err != nil {
		t.Fatalf("purchase after cancel failed: %v", err)
	}
}

func TestRewardRedemptionIsClaimableImmediately(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindReward, 20, nil, nil)

	order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("redemption failed: %v", err)
	}
	if order.Status != models.OrderStatusPendingClaim {
		t.Errorf("expected PENDING_CLAIM for reward, got %s", order.Status)
	}
}

func TestCancelRefundsPriceSnapshotExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)

	order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// A later price change must not affect the refund.
	env.db.Model(&models.Item{}).Where("id = ?", item.ID).Update("price_points", 500)

	cancelled, err := env.order.Cancel(schoolID, order.ID, nil)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if got := accountBalance(t, env.db, account.ID); got != 100 {
		t.Errorf("expected full refund to 100, got %d", got)
	}
	if got := itemStock(t, env.db, item.ID); *got != 2 {
		t.Errorf("expected stock restored to 2, got %d", *got)
	}

	_, err = env.order.Cancel(schoolID, order.ID, nil)
	if !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("expected invalid transition on second cancel, got %v", err)
	}
	if got := accountBalance(t, env.db, account.ID); got != 100 {
		t.Errorf("second cancel refunded again, balance %d", got)
	}
}

func TestCancelCyclesLeaveProgressionUntouched(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 1000)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 100, nil, nil)

	var before models.Account
	if err := env.db.First(&before, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}

	// Buying and cancelling must round-trip the balance without minting
	// experience or levels.
	for i := 0; i < 5; i++ {
		order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
		if err != nil {
			t.Fatalf("purchase %d failed: %v", i, err)
		}
		if _, err := env.order.Cancel(schoolID, order.ID, nil); err != nil {
			t.Fatalf("cancel %d failed: %v", i, err)
		}
	}

	var after models.Account
	if err := env.db.First(&after, "id = ?", account.ID).Error; err != nil {
		t.Fatalf("load account: %v", err)
	}
	if after.PointBalance != before.PointBalance {
		t.Errorf("balance did not round-trip: %d -> %d", before.PointBalance, after.PointBalance)
	}
	if after.Experience != before.Experience {
		t.Errorf("refunds minted experience: %d -> %d", before.Experience, after.Experience)
	}
	if after.Level != before.Level {
		t.Errorf("refunds changed level: %d -> %d", before.Level, after.Level)
	}
}

func TestPurchaseQuotaFailureRollsBackDebit(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(5), intPtr(1))

	if _, err := env.order.Purchase(schoolID, account.ID, item.ID, 1); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}

	// The debit runs before the quota count; a quota rejection must roll it
	// back along with everything else.
	_, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if !errors.HasCode(err, errors.ErrCodeQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if got := accountBalance(t, env.db, account.ID); got != 70 {
		t.Errorf("quota rejection leaked a debit, balance %d", got)
	}
	if got := itemStock(t, env.db, item.ID); *got != 4 {
		t.Errorf("quota rejection consumed stock: %d", *got)
	}
}

func TestClaimFlow(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)
	staffID := uuid.New()

	order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	// Claiming before the order is ready is not allowed.
	if _, err := env.order.Claim(schoolID, order.ID, staffID); !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("expected invalid transition for early claim, got %v", err)
	}

	ready, err := env.order.MarkReady(schoolID, order.ID, staffID)
	if err != nil {
		t.Fatalf("mark ready failed: %v", err)
	}
	if ready.Status != models.OrderStatusPendingClaim {
		t.Errorf("expected PENDING_CLAIM, got %s", ready.Status)
	}

	claimed, err := env.order.Claim(schoolID, order.ID, staffID)
	if err != nil {
		t.Fatalf("claim failed: %v", err)
	}
	if claimed.Status != models.OrderStatusClaimed {
		t.Errorf("expected CLAIMED, got %s", claimed.Status)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != staffID {
		t.Errorf("claimant not recorded: %v", claimed.ClaimedBy)
	}
	if claimed.ClaimedAt == nil {
		t.Error("claim time not recorded")
	}

	// A claimed order can no longer be cancelled: funds are settled.
	if _, err := env.order.Cancel(schoolID, order.ID, nil); !errors.HasCode(err, errors.ErrCodeInvalidTransition) {
		t.Fatalf("expected invalid transition canceling claimed order, got %v", err)
	}
	if got := accountBalance(t, env.db, account.ID); got != 70 {
		t.Errorf("claimed order was refunded, balance %d", got)
	}

	history, err := env.audit.GetOrderStatusHistory(order.ID)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(history) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(history))
	}
}

func TestExpireStaleCancelsAndRefunds(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), nil)

	order, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}

	env.db.Model(&models.Order{}).Where("id = ?", order.ID).Update("created_at", time.Now().Add(-100*time.Hour))

	expired, err := env.order.ExpireStale(time.Now().Add(-72 * time.Hour))
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired order, got %d", expired)
	}
	if got := accountBalance(t, env.db, account.ID); got != 100 {
		t.Errorf("expected refund on expiry, balance %d", got)
	}

	// Fresh orders stay untouched.
	fresh, err := env.order.Purchase(schoolID, account.ID, item.ID, 1)
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if expired, err := env.order.ExpireStale(time.Now().Add(-72 * time.Hour)); err != nil || expired != 0 {
		t.Errorf("fresh order was expired: n=%d err=%v", expired, err)
	}
	reloaded, err := env.order.GetOrder(schoolID, fresh.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if reloaded.Status != models.OrderStatusCreated {
		t.Errorf("fresh order status changed: %s", reloaded.Status)
	}
}

func TestPurchaseScenarioQuotaFundsAndStock(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	item := createTestItem(t, env.db, schoolID, models.ItemKindProduct, 30, int64Ptr(2), intPtr(1))

	buyer := createTestAccount(t, env.db, schoolID, 100)
	broke := createTestAccount(t, env.db, schoolID, 10)
	second := createTestAccount(t, env.db, schoolID, 100)
	late := createTestAccount(t, env.db, schoolID, 100)

	if _, err := env.order.Purchase(schoolID, buyer.ID, item.ID, 1); err != nil {
		t.Fatalf("first purchase failed: %v", err)
	}
	if got := accountBalance(t, env.db, buyer.ID); got != 70 {
		t.Errorf("expected balance 70, got %d", got)
	}

	// Same account again: quota rejects it.
	if _, err := env.order.Purchase(schoolID, buyer.ID, item.ID, 1); !errors.HasCode(err, errors.ErrCodeQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	// Underfunded account: stock must survive the rollback.
	if _, err := env.order.Purchase(schoolID, broke.ID, item.ID, 1); !errors.HasCode(err, errors.ErrCodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if got := itemStock(t, env.db, item.ID); *got != 1 {
		t.Errorf("failed purchase consumed stock: %d", *got)
	}

	// Second funded account takes the last unit.
	if _, err := env.order.Purchase(schoolID, second.ID, item.ID, 1); err != nil {
		t.Fatalf("second purchase failed: %v", err)
	}
	if got := itemStock(t, env.db, item.ID); *got != 0 {
		t.Errorf("expected stock 0, got %d", *got)
	}

	if _, err := env.order.Purchase(schoolID, late.ID, item.ID, 1); !errors.HasCode(err, errors.ErrCodeInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	if got := accountBalance(t, env.db, late.ID); got != 100 {
		t.Errorf("sold-out purchase touched balance: %d", got)
	}
}
