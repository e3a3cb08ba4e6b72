package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet holds referral commissions and reward credits.
type Wallet struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceHalalas int64          `gorm:"not null;default:0" json:"balance_halalas"`
	Currency       string         `gorm:"size:3;default:'SAR'" json:"currency"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Wallet) TableName() string {
	return "wallets"
}
