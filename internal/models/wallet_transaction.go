package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletTransaction records wallet credits (referral commission, milestone and early-bird bonuses).
type WalletTransaction struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	AmountHalalas int64          `gorm:"not null" json:"amount_halalas"` // positive = credit, negative = debit
	Type          string         `gorm:"size:30;not null;index" json:"type"`
	Reference     string         `gorm:"size:128" json:"reference"` // e.g. backing_12
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}
