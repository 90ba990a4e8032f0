package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/models"
	"gorm.io/gorm"
)

func grantCount(t *testing.T, db *gorm.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var count int64
	db.Model(&models.AccountBadge{}).Where("account_id = ?", accountID).Count(&count)
	return count
}

func TestEvaluateGrantsOnceAcrossReruns(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 0)
	createTestBadge(t, env.db, schoolID, nil, nil, int64Ptr(50))

	err := env.ledger.Run(func(tx *gorm.DB) error {
		_, err := env.ledger.Credit(tx, schoolID, account.ID, 60, nil, "quest approved")
		return err
	})
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := env.badge.Evaluate(schoolID, account.ID); err != nil {
			t.Fatalf("evaluate %d failed: %v", i, err)
		}
	}

	if got := grantCount(t, env.db, account.ID); got != 1 {
		t.Errorf("expected exactly 1 grant, got %d", got)
	}
}

func TestEvaluateChecksAllPresentThresholds(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	quest := createTestQuest(t, env.db, schoolID, 10, models.QuestValidationManual)

	// Needs both points and one approved quest.
	createTestBadge(t, env.db, schoolID, nil, intPtr(1), int64Ptr(50))

	if err := env.badge.Evaluate(schoolID, account.ID); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got := grantCount(t, env.db, account.ID); got != 0 {
		t.Errorf("granted before quest threshold met")
	}

	submission, err := env.submission.Submit(schoolID, account.ID, quest.ID, nil)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// Approval triggers evaluation itself.
	if _, err := env.submission.Approve(schoolID, submission.ID, nil); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	if got := grantCount(t, env.db, account.ID); got != 1 {
		t.Errorf("expected grant after approval, got %d", got)
	}
}

func TestEvaluateIgnoresInactiveBadges(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	badge := createTestBadge(t, env.db, schoolID, nil, nil, int64Ptr(50))

	env.db.Model(&models.Badge{}).Where("id = ?", badge.ID).Update("is_active", false)

	if err := env.badge.Evaluate(schoolID, account.ID); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got := grantCount(t, env.db, account.ID); got != 0 {
		t.Errorf("inactive badge was granted")
	}
}

func TestEvaluateIsSchoolScoped(t *testing.T) {
	env := newTestEnv(t)
	schoolA := uuid.New()
	schoolB := uuid.New()
	account := createTestAccount(t, env.db, schoolA, 100)
	createTestBadge(t, env.db, schoolB, nil, nil, int64Ptr(50))

	if err := env.badge.Evaluate(schoolA, account.ID); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}
	if got := grantCount(t, env.db, account.ID); got != 0 {
		t.Errorf("badge from another school was granted")
	}
}

func TestMeetsRequirements(t *testing.T) {
	account := &models.Account{Level: 3, PointBalance: 120}

	tests := []struct {
		name           string
		badge          models.Badge
		approvedQuests int64
		want           bool
	}{
		{"no thresholds", models.Badge{}, 0, true},
		{"level met", models.Badge{RequiredLevel: intPtr(3)}, 0, true},
		{"level not met", models.Badge{RequiredLevel: intPtr(4)}, 0, false},
		{"quests met", models.Badge{RequiredQuests: intPtr(2)}, 2, true},
		{"quests not met", models.Badge{RequiredQuests: intPtr(2)}, 1, false},
		{"points met", models.Badge{RequiredPoints: int64Ptr(100)}, 0, true},
		{"points not met", models.Badge{RequiredPoints: int64Ptr(200)}, 0, false},
		{"one of two fails", models.Badge{RequiredLevel: intPtr(2), RequiredPoints: int64Ptr(200)}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meetsRequirements(account, tt.approvedQuests, &tt.badge); got != tt.want {
				t.Errorf("meetsRequirements() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetAccountBadgesPreloadsBadge(t *testing.T) {
	env := newTestEnv(t)
	schoolID := uuid.New()
	account := createTestAccount(t, env.db, schoolID, 100)
	createTestBadge(t, env.db, schoolID, nil, nil, int64Ptr(50))

	if err := env.badge.Evaluate(schoolID, account.ID); err != nil {
		t.Fatalf("evaluate failed: %v", err)
	}

	grants, err := env.badge.GetAccountBadges(schoolID, account.ID)
	if err != nil {
		t.Fatalf("get account badges failed: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	if grants[0].Badge.Name != "Bookworm" {
		t.Errorf("badge not preloaded: %+v", grants[0].Badge)
	}
}
