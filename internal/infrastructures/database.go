package infrastructures

import (
	"os"

	"github.com/questforge/points-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func NewDatabase() *gorm.DB {
	db, err := gorm.Open(postgres.Open(os.Getenv("DATABASE_URL")), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	if err := Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Account{},
		&models.Quest{},
		&models.QuestSubmission{},
		&models.Item{},
		&models.Order{},
		&models.Badge{},
		&models.AccountBadge{},
		&models.LedgerAudit{},
		&models.OrderStatusHistory{},
	)
}
