package services

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	infrastructures.Config = &infrastructures.AppConfig{
		ORDER_CLAIM_TTL_HOURS: 72,
	}
}

// setupTestDB opens a fresh in-memory database with the full schema. The
// single-connection pool keeps the memory database alive and serializes
// statements the way the tests expect.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := infrastructures.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

type testEnv struct {
	db         *gorm.DB
	ledger     *LedgerService
	quest      *QuestService
	submission *SubmissionService
	badge      *BadgeService
	item       *ItemService
	order      *OrderService
	audit      *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	validator := infrastructures.NewValidator()

	ledger := NewLedgerService(db)
	quest := NewQuestService(db, validator)
	badge := NewBadgeService(db, validator, ledger)
	item := NewItemService(db, validator, ledger)
	audit := NewAuditService(db)
	submission := NewSubmissionService(db, validator, ledger, quest, badge)
	order := NewOrderService(db, validator, ledger, item, badge, audit)

	return &testEnv{
		db:         db,
		ledger:     ledger,
		quest:      quest,
		submission: submission,
		badge:      badge,
		item:       item,
		order:      order,
		audit:      audit,
	}
}

// setupFileTestDB opens a file-backed database with a normal connection pool
// so that goroutines really contend on separate connections. SQLITE_BUSY from
// that contention surfaces as a transient error.
func setupFileTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "ledger.db") + "?_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := infrastructures.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func createTestAccount(t *testing.T, db *gorm.DB, schoolID uuid.UUID, balance int64) *models.Account {
	t.Helper()

	account := &models.Account{
		SchoolID:     schoolID,
		AuthID:       uuid.New(),
		Role:         models.AccountRoleStudent,
		PointBalance: balance,
		Experience:   balance,
		Level:        1,
	}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

func createTestQuest(t *testing.T, db *gorm.DB, schoolID uuid.UUID, award int64, validation models.QuestValidationType) *models.Quest {
	t.Helper()

	quest := &models.Quest{
		SchoolID:       schoolID,
		Title:          "Read a book",
		Slug:           "read-a-book",
		PointsAward:    award,
		ValidationType: validation,
		IsActive:       true,
	}
	if err := db.Create(quest).Error; err != nil {
		t.Fatalf("failed to create test quest: %v", err)
	}
	return quest
}

func createTestItem(t *testing.T, db *gorm.DB, schoolID uuid.UUID, kind models.ItemKind, price int64, stock *int64, maxPerAccount *int) *models.Item {
	t.Helper()

	item := &models.Item{
		SchoolID:      schoolID,
		Kind:          kind,
		Name:          "Canteen voucher",
		Slug:          "canteen-voucher",
		PricePoints:   price,
		Stock:         stock,
		MaxPerAccount: maxPerAccount,
		IsActive:      true,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

func createTestBadge(t *testing.T, db *gorm.DB, schoolID uuid.UUID, requiredLevel, requiredQuests *int, requiredPoints *int64) *models.Badge {
	t.Helper()

	badge := &models.Badge{
		SchoolID:       schoolID,
		Name:           "Bookworm",
		Slug:           "bookworm",
		RequiredLevel:  requiredLevel,
		RequiredQuests: requiredQuests,
		RequiredPoints: requiredPoints,
		IsActive:       true,
	}
	if err := db.Create(badge).Error; err != nil {
		t.Fatalf("failed to create test badge: %v", err)
	}
	return badge
}

func accountBalance(t *testing.T, db *gorm.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var account models.Account
	if err := db.First(&account, "id = ?", accountID).Error; err != nil {
		t.Fatalf("failed to reload account: %v", err)
	}
	return account.PointBalance
}

func itemStock(t *testing.T, db *gorm.DB, itemID uuid.UUID) *int64 {
	t.Helper()

	var item models.Item
	if err := db.First(&item, "id = ?", itemID).Error; err != nil {
		t.Fatalf("failed to reload item: %v", err)
	}
	return item.Stock
}

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }
