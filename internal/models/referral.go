package models

import (
	"time"

	"gorm.io/gorm"
)

// ReferralCode is a unique invite code belonging to a user.
// Each user has at most one referral code.
type ReferralCode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	Code      string         `gorm:"uniqueIndex;size:20;not null" json:"code"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReferralCode) TableName() string { return "referral_codes" }

// Referral tracks the relationship between a referrer and a referred user.
// A user can only be referred once. The referral turns SUCCESSFUL on the referred
// user's first backing; commission is paid on a bounded number of backings.
type Referral struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	ReferrerID        uint           `gorm:"not null;index" json:"referrer_id"`
	ReferredUserID    uint           `gorm:"uniqueIndex;not null" json:"referred_user_id"`
	Code              string         `gorm:"size:20;not null" json:"code"`
	Status            string         `gorm:"size:20;not null;index;default:'PENDING'" json:"status"`
	QualifiedAt       *time.Time     `json:"qualified_at"`
	CommissionedCount int            `gorm:"not null;default:0" json:"commissioned_count"`
	CommissionHalalas int64          `gorm:"not null;default:0" json:"commission_halalas"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	Referrer     User `gorm:"foreignKey:ReferrerID" json:"-"`
	ReferredUser User `gorm:"foreignKey:ReferredUserID" json:"referred_user,omitempty"`
}

func (Referral) TableName() string { return "referrals" }
