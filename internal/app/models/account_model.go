package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AccountRole string

const (
	AccountRoleStudent AccountRole = "STUDENT"
	AccountRoleTeacher AccountRole = "TEACHER"
	AccountRoleAdmin   AccountRole = "ADMIN"
)

// Account is the per-school wallet for a user. PointBalance, Experience and
// Level are written exclusively by the ledger service.
type Account struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SchoolID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_school_auth;index" json:"school_id"`
	AuthID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_school_auth" json:"auth_id"`
	Role         AccountRole    `gorm:"type:varchar(20);not null;default:'STUDENT'" json:"role"`
	PointBalance int64          `gorm:"not null;default:0" json:"point_balance"`
	Experience   int64          `gorm:"not null;default:0" json:"experience"`
	Level        int            `gorm:"not null;default:1" json:"level"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

const baseExperiencePerLevel = 100

// experienceForNextLevel returns the experience needed to go from
// currentLevel to currentLevel+1. The curve grows superlinearly so early
// levels come fast.
func experienceForNextLevel(currentLevel int) int64 {
	if currentLevel < 1 {
		currentLevel = 1
	}
	return int64(float64(baseExperiencePerLevel) * math.Pow(float64(currentLevel), 1.2))
}

// LevelForExperience maps accumulated experience to a level. The mapping is
// monotone: more experience never yields a lower level.
func LevelForExperience(experience int64) int {
	level := 1
	remaining := experience
	for {
		needed := experienceForNextLevel(level)
		if remaining < needed {
			return level
		}
		remaining -= needed
		level++
	}
}

// Registration carries no role: every account starts as STUDENT and is
// elevated through the admin-gated role update.
type AccountRoleUpdateRequest struct {
	Role AccountRole `json:"role" validate:"required,oneof=STUDENT TEACHER ADMIN"`
}
