package models

import (
	"time"

	"gorm.io/gorm"
)

// EarlyBirdRegistration assigns each user a single 1-based rank.
type EarlyBirdRegistration struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Rank         int            `gorm:"column:registration_rank;uniqueIndex;not null" json:"rank"`
	Tier         string         `gorm:"size:20;not null;index" json:"tier"`
	BonusHalalas int64          `gorm:"not null;default:0" json:"bonus_halalas"`
	CreatedAt    time.Time      `json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (EarlyBirdRegistration) TableName() string { return "early_bird_registrations" }
